package app

import (
	"context"
	"time"
)

type IAppUsecase interface {
	Login(ctx context.Context) (response LoginResponse, err error)
	LoginWithCode(ctx context.Context, phoneNumber string) (loginCode string, err error)
	Logout(ctx context.Context) (err error)
	Reconnect(ctx context.Context) (err error)
	Status(ctx context.Context) (response StatusResponse, err error)
}

type LoginResponse struct {
	ImagePath string        `json:"image_path"`
	Duration  time.Duration `json:"duration"`
	Code      string        `json:"code"`
}

type StatusResponse struct {
	IsConnected bool   `json:"is_connected"`
	IsLoggedIn  bool   `json:"is_logged_in"`
	DeviceJID   string `json:"device_jid,omitempty"`
	MeNumber    string `json:"me_number,omitempty"`
}
