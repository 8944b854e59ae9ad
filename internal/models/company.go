package models

import "time"

// Company is an OSS/NIB business registration record.
type Company struct {
	NIB          string
	Name         string
	NPWP         string
	LegalStatus  string
	BusinessType string
	Address      string
	IssuedAt     *time.Time

	Shareholders       []Shareholder
	ResponsiblePersons []ResponsiblePerson
	Projects           []Project
}

type Shareholder struct {
	Name       string
	NPWP       string
	Percentage float64
}

type ResponsiblePerson struct {
	Name     string
	Position string
}

type Project struct {
	ID          string
	KBLI        string
	Description string
	Investment  float64
}
