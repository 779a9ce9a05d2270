// Package grantfile lee tablas de permisos en CSV para sembrar role_permissions.
//
// Formato, una fila por permiso (las líneas que empiezan con # se ignoran):
//
//	rol,recurso,acción[,own][,campo1|campo2]
package grantfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
)

// Read decodifica el archivo. charset acepta utf-8 (por defecto) o ISO-8859-1.
func Read(r io.Reader, charset string) ([]rbac.Grant, error) {
	switch strings.ToUpper(strings.TrimSpace(charset)) {
	case "", "UTF-8", "UTF8":
	case "ISO-8859-1", "ISO8859-1", "LATIN1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("grantfile: charset no soportado %q", charset)
	}

	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []rbac.Grant
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("grantfile: %w", err)
		}
		g, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("grantfile: registro %d: %w", line, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func parseRecord(rec []string) (rbac.Grant, error) {
	if len(rec) < 3 || len(rec) > 5 {
		return rbac.Grant{}, fmt.Errorf("se esperan 3 a 5 columnas, hay %d", len(rec))
	}
	role, ok := rbac.ParseRole(strings.TrimSpace(rec[0]))
	if !ok {
		return rbac.Grant{}, fmt.Errorf("rol desconocido %q", rec[0])
	}
	res, ok := rbac.ParseResource(strings.TrimSpace(rec[1]))
	if !ok {
		return rbac.Grant{}, fmt.Errorf("recurso desconocido %q", rec[1])
	}
	act, ok := rbac.ParseAction(strings.TrimSpace(rec[2]))
	if !ok {
		return rbac.Grant{}, fmt.Errorf("acción desconocida %q", rec[2])
	}
	g := rbac.Grant{Role: role, Resource: res, Action: act}
	if len(rec) > 3 {
		switch strings.TrimSpace(rec[3]) {
		case "own":
			g.OwnOnly = true
		case "":
		default:
			return rbac.Grant{}, fmt.Errorf("cuarta columna debe ser own o vacía: %q", rec[3])
		}
	}
	if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
		for _, f := range strings.Split(rec[4], "|") {
			if f = strings.TrimSpace(f); f != "" {
				g.Fields = append(g.Fields, f)
			}
		}
	}
	return g, nil
}
