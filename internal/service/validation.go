package service

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

// Contact validation errors
var (
	ErrInvalidEmail   = errors.New("email is invalid")
	ErrInvalidPhone   = errors.New("phone must have 10 or 11 digits")
	ErrInvalidCpfCnpj = errors.New("CPF/CNPJ must have 11 or 14 digits")
)

// digitsOnly strips punctuation such as "123.456.789-00" or "(11) 98765-4321"
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validCpfCnpj(s string) bool {
	n := len(digitsOnly(s))
	return n == 11 || n == 14
}

func validPhone(s string) bool {
	d := digitsOnly(s)
	// allow a leading 55 country code
	if len(d) == 12 || len(d) == 13 {
		d = strings.TrimPrefix(d, "55")
	}
	return len(d) == 10 || len(d) == 11
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
