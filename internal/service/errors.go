// Package service provides business logic for the AgriSense platform.
package service

import "errors"

// Domain errors raised by services. Handlers map these to HTTP statuses.
var (
	// ErrInvalidCredentials is returned on unknown email or wrong
	// password; the two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("認証情報が正しくありません")

	// ErrAIGeneration is returned when the model call fails or returns
	// empty output. The request is terminal; there is no retry.
	ErrAIGeneration = errors.New("AI応答の生成中にエラーが発生しました")

	// ErrNoLocation is returned when a weather request is made by a
	// user with no registered city.
	ErrNoLocation = errors.New("プロフィールに地域情報が設定されていません")
)
