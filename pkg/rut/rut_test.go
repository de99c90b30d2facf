package rut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StantonMatt/coab-platform/pkg/rut"
)

func TestValidate_RUTsConocidos(t *testing.T) {
	cases := map[string]string{
		"12.345.678-5": "12345678-5",
		"12345678-5":   "12345678-5",
		"123456785":    "12345678-5",
		"11.111.111-1": "11111111-1",
		"7.654.321-6":  "7654321-6",
		"6.000.062-k":  "6000062-K",
		" 9.999.999-3": "9999999-3",
	}
	for in, want := range cases {
		got, err := rut.Validate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestValidate_DVIncorrecto(t *testing.T) {
	_, err := rut.Validate("12.345.678-9")
	require.Error(t, err)
	assert.ErrorIs(t, err, rut.ErrDV)
}

func TestValidate_FormatoInvalido(t *testing.T) {
	for _, in := range []string{"", "1", "12a45678-5", "1234567890123", "12K45678-5"} {
		_, err := rut.Validate(in)
		assert.ErrorIs(t, err, rut.ErrFormato, in)
	}
}

func TestComputeDV(t *testing.T) {
	dv, err := rut.ComputeDV("12345678")
	require.NoError(t, err)
	assert.Equal(t, byte('5'), dv)

	dv, err = rut.ComputeDV("6000062")
	require.NoError(t, err)
	assert.Equal(t, byte('K'), dv)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.345.678-5", rut.Format("123456785"))
	assert.Equal(t, "1.234.567-4", rut.Format("1234567-4"))
	assert.Equal(t, "no-es-rut", rut.Format("no-es-rut"))
}
