package middleware

import (
	"errors"
	"net/mail"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateName validates a display name.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return errors.New("名前は2文字以上で入力してください")
	}
	if n > 255 {
		return errors.New("名前が長すぎます")
	}
	return nil
}

// ValidateEmail validates an email address.
func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("有効なメールアドレスを入力してください")
	}
	return nil
}

// ValidatePassword validates a password.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("パスワードは8文字以上で入力してください")
	}
	if len(password) > 100 {
		return errors.New("パスワードが長すぎます")
	}
	return nil
}

// ValidateMessageContent validates chat message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("メッセージを入力してください")
	}
	if utf8.RuneCountInString(content) > 5000 {
		return errors.New("メッセージが長すぎます")
	}
	if !utf8.ValidString(content) {
		return errors.New("メッセージの文字コードが不正です")
	}
	return nil
}

// ValidateSessionID validates a session id.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("無効なセッションIDです")
	}
	return nil
}

// ValidateTitle validates a session title.
func ValidateTitle(title string) error {
	if utf8.RuneCountInString(title) > 255 {
		return errors.New("タイトルが長すぎます")
	}
	if !utf8.ValidString(title) {
		return errors.New("タイトルの文字コードが不正です")
	}
	return nil
}
