// Package model defines licensed-website business records.
package model

import (
	"strings"
	"time"
)

// DualDate carries the same date in the Persian and Gregorian calendars,
// both as the source system formats them.
type DualDate struct {
	Persian   string `json:"persian"`
	Gregorian string `json:"gregorian"`
}

// Location is a WGS84 point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Service is one permitted business service row on the licence.
type Service struct {
	RowNumber         int    `json:"row_number"`
	ServiceTitle      string `json:"service_title"`
	PermitIssuer      string `json:"permit_issuer"`
	PermitNumber      string `json:"permit_number"`
	ValidityStartDate string `json:"validity_start_date"`
	ValidityEndDate   string `json:"validity_end_date"`
	Status            string `json:"status"`
}

// DomainInfo records where in the source registry the record was scraped.
type DomainInfo struct {
	PageNumber int    `json:"page_number"`
	RowIndex   int    `json:"row_index"`
	RowNumber  int    `json:"row_number"`
	Province   string `json:"province"`
	City       string `json:"city"`
	DomainURL  string `json:"domain_url"`
}

// Profile is one licensed-business record, keyed by its website url.
type Profile struct {
	ID                  string
	BusinessName        string
	WebsiteURL          string
	OwnerName           string
	GrantDate           DualDate
	ExpiryDate          DualDate
	Address             string
	Phone               string
	Email               string
	Location            Location
	BusinessExperience  string
	BusinessHours       string
	BusinessServices    []Service
	ExtractionTimestamp time.Time
	DomainInfo          DomainInfo
	CreatedAt           time.Time
}

// Validate checks the profile invariants before persistence.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.WebsiteURL) == "" {
		return ErrEmptyWebsiteURL
	}
	return nil
}
