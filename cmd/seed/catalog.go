package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// El ERP exporta en ISO-8859-1, separado por ';' y con coma decimal.
func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

// readProducts columnas: codigo;descripcion;precio[;activo]. La primera fila es encabezado.
func readProducts(r io.Reader) ([]entity.Product, error) {
	rows, err := newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer productos: %w", err)
	}
	var out []entity.Product
	seen := make(map[string]int)
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("productos línea %d: se esperan al menos 3 columnas", i+1)
		}
		price, err := parsePrice(row[2])
		if err != nil {
			return nil, fmt.Errorf("productos línea %d: %w", i+1, err)
		}
		p := entity.Product{
			Code:   strings.TrimSpace(row[0]),
			Name:   strings.TrimSpace(row[1]),
			Price:  price,
			Active: true,
		}
		if len(row) > 3 {
			p.Active = parseActive(row[3])
		}
		if p.Code == "" || p.Name == "" {
			return nil, fmt.Errorf("productos línea %d: código y descripción son obligatorios", i+1)
		}
		// Código repetido: gana la última fila.
		if j, ok := seen[p.Code]; ok {
			out[j] = p
			continue
		}
		seen[p.Code] = len(out)
		out = append(out, p)
	}
	return out, nil
}

// readAccounts columnas: codigo;cedula;nombre;correo[;rol[;estado]].
func readAccounts(r io.Reader) ([]entity.Account, error) {
	rows, err := newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer empleados: %w", err)
	}
	var out []entity.Account
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("empleados línea %d: se esperan al menos 4 columnas", i+1)
		}
		a := entity.Account{
			EmployeeCode: strings.TrimSpace(row[0]),
			NationalID:   strings.TrimSpace(row[1]),
			Name:         strings.TrimSpace(row[2]),
			Email:        strings.ToLower(strings.TrimSpace(row[3])),
			Role:         entity.RoleEmployee,
			Status:       entity.AccountActive,
		}
		if len(row) > 4 && strings.TrimSpace(row[4]) != "" {
			a.Role = strings.ToLower(strings.TrimSpace(row[4]))
		}
		if len(row) > 5 && !parseActive(row[5]) {
			a.Status = entity.AccountInactive
		}
		switch a.Role {
		case entity.RoleEmployee, entity.RoleDispatcher, entity.RoleAdmin:
		default:
			return nil, fmt.Errorf("empleados línea %d: rol %q desconocido", i+1, a.Role)
		}
		if a.EmployeeCode == "" || a.Name == "" {
			return nil, fmt.Errorf("empleados línea %d: código y nombre son obligatorios", i+1)
		}
		out = append(out, a)
	}
	return out, nil
}

// parsePrice acepta "2.500,50", "2500,5" o "2500.50".
func parsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("precio %q inválido", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("precio %q negativo", raw)
	}
	return d.Round(2), nil
}

func parseActive(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "n", "no", "false", "inactivo", "i":
		return false
	}
	return true
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
