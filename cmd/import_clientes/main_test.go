package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeer_ValidaRUTYDescartaRepetidos(t *testing.T) {
	csvData := "rut;numero_cliente;nombre;apellido;direccion;poblacion;comuna;telefono;email\n" +
		"12.345.678-5;1001;Juan;Pérez;Los Aromos 12;Villa Sur;Coquimbo;9 8765 4321;JUAN@MAIL.CL\n" +
		"12345678-9;1002;Rut;Malo;Calle 1;;;;\n" +
		"12345678-5;1003;Juan;Repetido;Calle 2;;;;\n" +
		"11.111.111-1;;Sin;Numero;Calle 3;;;;\n"

	filas, rechazadas, err := leer(strings.NewReader(csvData), ';')
	require.NoError(t, err)

	require.Len(t, filas, 1)
	assert.Equal(t, "12345678-5", filas[0].rut)
	assert.Equal(t, "1001", filas[0].numero)
	assert.Equal(t, "juan@mail.cl", filas[0].email)
	assert.Equal(t, "+56987654321", filas[0].telefono)
	assert.Len(t, rechazadas, 3)
}

func TestLeer_FaltaColumnaObligatoria(t *testing.T) {
	_, _, err := leer(strings.NewReader("rut;nombre\n12345678-5;Juan\n"), ';')
	assert.Error(t, err)
}

func TestDecoder_Windows1252(t *testing.T) {
	raw := []byte("rut;numero_cliente;nombre;apellido;direccion\n12345678-5;1;Mar\xeda;Mu\xf1oz;Pasaje \xd1uble\n")
	r, err := decoder(bytes.NewReader(raw), "win1252")
	require.NoError(t, err)

	filas, _, err := leer(r, ';')
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "María", filas[0].nombre)
	assert.Equal(t, "Muñoz", filas[0].apellido)
	assert.Equal(t, "Pasaje Ñuble", filas[0].direccion)
}

func TestEscribir_IDsDeterministas(t *testing.T) {
	filas := []fila{{rut: "12345678-5", numero: "1001", nombre: "O'Higgins", direccion: "Calle 1"}}

	var a, b bytes.Buffer
	escribir(&a, filas)
	escribir(&b, filas)

	assert.Equal(t, a.String(), b.String())
	assert.Contains(t, a.String(), "'O''Higgins'")
	assert.Contains(t, a.String(), "ON CONFLICT (rut)")
	assert.Contains(t, a.String(), "INSERT INTO direcciones")
}
