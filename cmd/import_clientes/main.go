// import_clientes genera un script SQL para cargar clientes y direcciones desde la
// exportación CSV del sistema anterior (separada por ';', normalmente en Windows-1252).
//
// Uso: go run ./cmd/import_clientes -in clientes.csv [-out clientes.sql] [-encoding win1252|latin1|utf8]
//
// Columnas esperadas (con encabezado):
//
//	rut;numero_cliente;nombre;apellido;direccion;poblacion;comuna;telefono;email
//
// Los IDs se derivan del RUT (UUID v5), así que el script se puede volver a ejecutar.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/StantonMatt/coab-platform/internal/infrastructure/sms"
	"github.com/StantonMatt/coab-platform/pkg/rut"
)

var namespace = uuid.MustParse("6f1c3d2a-8a4e-4f43-9a57-3b0d1c1e7b10")

var columnas = []string{"rut", "numero_cliente", "nombre", "apellido", "direccion", "poblacion", "comuna", "telefono", "email"}

type fila struct {
	rut, numero, nombre, apellido string
	direccion, poblacion, comuna  string
	telefono, email               string
}

func main() {
	in := flag.String("in", "", "archivo CSV de origen (obligatorio)")
	outPath := flag.String("out", "", "archivo SQL de salida (por defecto stdout)")
	encoding := flag.String("encoding", "win1252", "codificación del CSV: win1252, latin1 o utf8")
	sep := flag.String("sep", ";", "separador de columnas")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "Error: -in es obligatorio")
		flag.Usage()
		os.Exit(1)
	}
	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	reader, err := decoder(f, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	filas, rechazadas, err := leer(reader, []rune(*sep)[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *outPath != "" {
		out, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
		w = out
	}
	bw := bufio.NewWriter(w)
	escribir(bw, filas)
	if err := bw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	for _, r := range rechazadas {
		fmt.Fprintln(os.Stderr, "rechazada:", r)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d clientes, %d filas rechazadas\n", len(filas), len(rechazadas))
}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "win1252", "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "utf8", "utf-8":
		return r, nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}
}

// leer parsea el CSV, valida el RUT y descarta filas duplicadas o incompletas.
func leer(r io.Reader, sep rune) ([]fila, []string, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range columnas[:5] {
		if _, ok := idx[c]; !ok {
			return nil, nil, fmt.Errorf("falta la columna %q", c)
		}
	}
	get := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var filas []fila
	var rechazadas []string
	vistos := make(map[string]bool)
	linea := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		linea++
		if err != nil {
			rechazadas = append(rechazadas, fmt.Sprintf("línea %d: %v", linea, err))
			continue
		}
		normalizado, err := rut.Validate(get(rec, "rut"))
		if err != nil {
			rechazadas = append(rechazadas, fmt.Sprintf("línea %d: %v", linea, err))
			continue
		}
		if vistos[normalizado] {
			rechazadas = append(rechazadas, fmt.Sprintf("línea %d: RUT %s repetido", linea, normalizado))
			continue
		}
		fl := fila{
			rut:       normalizado,
			numero:    get(rec, "numero_cliente"),
			nombre:    get(rec, "nombre"),
			apellido:  get(rec, "apellido"),
			direccion: get(rec, "direccion"),
			poblacion: get(rec, "poblacion"),
			comuna:    get(rec, "comuna"),
			email:     strings.ToLower(get(rec, "email")),
		}
		if tel := get(rec, "telefono"); tel != "" {
			fl.telefono = sms.NormalizarTelefono(tel)
		}
		if fl.numero == "" || fl.nombre == "" {
			rechazadas = append(rechazadas, fmt.Sprintf("línea %d: numero_cliente y nombre son obligatorios", linea))
			continue
		}
		vistos[normalizado] = true
		filas = append(filas, fl)
	}
	return filas, rechazadas, nil
}

func escribir(w io.Writer, filas []fila) {
	fmt.Fprintln(w, "-- Carga de clientes desde el sistema anterior")
	fmt.Fprintln(w, "BEGIN;")
	fmt.Fprintln(w)
	for _, f := range filas {
		id := uuid.NewSHA1(namespace, []byte(f.rut))
		fmt.Fprintf(w, "INSERT INTO clientes (id, rut, numero_cliente, nombre, apellido, email, telefono)\n")
		fmt.Fprintf(w, "VALUES ('%s', '%s', '%s', '%s', '%s', '%s', '%s')\n",
			id, f.rut, escapeSQL(f.numero), escapeSQL(f.nombre), escapeSQL(f.apellido), escapeSQL(f.email), escapeSQL(f.telefono))
		fmt.Fprintln(w, "ON CONFLICT (rut) DO UPDATE SET nombre = EXCLUDED.nombre, apellido = EXCLUDED.apellido,")
		fmt.Fprintln(w, "  email = EXCLUDED.email, telefono = EXCLUDED.telefono, updated_at = now();")
		if f.direccion != "" {
			dirID := uuid.NewSHA1(namespace, []byte(f.rut+"|"+strings.ToLower(f.direccion)))
			fmt.Fprintf(w, "INSERT INTO direcciones (id, cliente_id, direccion, poblacion, comuna)\n")
			fmt.Fprintf(w, "SELECT '%s', id, '%s', '%s', '%s' FROM clientes WHERE rut = '%s'\n",
				dirID, escapeSQL(f.direccion), escapeSQL(f.poblacion), escapeSQL(f.comuna), f.rut)
			fmt.Fprintln(w, "ON CONFLICT (id) DO NOTHING;")
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMMIT;")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
