// Package rut valida y formatea el Rol Único Tributario chileno (módulo 11).
package rut

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrFormato = errors.New("rut: formato inválido")
	ErrDV      = errors.New("rut: dígito verificador inválido")
)

// Normalize quita puntos, guiones y espacios y devuelve "cuerpo-DV" con K mayúscula.
// Ej: "12.345.678-5" → "12345678-5", "9.876.543-k" → "9876543-K".
func Normalize(s string) (string, error) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == 'k' || r == 'K':
			b.WriteRune('K')
		case r == '.' || r == '-' || unicode.IsSpace(r):
		default:
			return "", ErrFormato
		}
	}
	clean := b.String()
	if len(clean) < 2 || len(clean) > 9 {
		return "", ErrFormato
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1]
	if strings.ContainsRune(body, 'K') {
		return "", ErrFormato
	}
	return body + "-" + string(dv), nil
}

// Validate normaliza y verifica el dígito verificador. Devuelve el RUT normalizado.
func Validate(s string) (string, error) {
	n, err := Normalize(s)
	if err != nil {
		return "", err
	}
	body, dv := n[:len(n)-2], n[len(n)-1]
	expected, err := ComputeDV(body)
	if err != nil {
		return "", err
	}
	if dv != expected {
		return "", fmt.Errorf("%w: esperado %c, recibido %c", ErrDV, expected, dv)
	}
	return n, nil
}

// ComputeDV calcula el dígito verificador del cuerpo numérico (serie 2..7 de derecha a izquierda).
func ComputeDV(body string) (byte, error) {
	if body == "" {
		return 0, ErrFormato
	}
	sum, mul := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, ErrFormato
		}
		sum += int(c-'0') * mul
		mul++
		if mul > 7 {
			mul = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + r), nil
	}
}

// Format devuelve el RUT con puntos de miles: "12345678-5" → "12.345.678-5".
// Si s no es un RUT normalizable se devuelve sin cambios.
func Format(s string) string {
	n, err := Normalize(s)
	if err != nil {
		return s
	}
	body, dv := n[:len(n)-2], n[len(n)-1:]
	var b strings.Builder
	for i, c := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String() + "-" + dv
}
