package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/searchforge/searchforge/internal/platform/database"
	"github.com/searchforge/searchforge/internal/website/domain/model"
)

const (
	fieldBusinessName        = "business_name"
	fieldWebsiteURL          = "website_url"
	fieldOwnerName           = "owner_name"
	fieldGrantDate           = "grant_date"
	fieldExpiryDate          = "expiry_date"
	fieldAddress             = "address"
	fieldPhone               = "phone"
	fieldEmail               = "email"
	fieldLocation            = "location"
	fieldBusinessExperience  = "business_experience"
	fieldBusinessHours       = "business_hours"
	fieldBusinessServices    = "business_services"
	fieldExtractionTimestamp = "extraction_timestamp"
	fieldDomainInfo          = "domain_info"
	fieldCreatedAt           = "created_at"

	fieldProvince = "province"
)

func toDocument(p *model.Profile) bson.M {
	services := make([]bson.M, 0, len(p.BusinessServices))
	for _, s := range p.BusinessServices {
		services = append(services, bson.M{
			"row_number":          float64(s.RowNumber),
			"service_title":       s.ServiceTitle,
			"permit_issuer":       s.PermitIssuer,
			"permit_number":       s.PermitNumber,
			"validity_start_date": s.ValidityStartDate,
			"validity_end_date":   s.ValidityEndDate,
			"status":              s.Status,
		})
	}

	return bson.M{
		fieldBusinessName: p.BusinessName,
		fieldWebsiteURL:   p.WebsiteURL,
		fieldOwnerName:    p.OwnerName,
		fieldGrantDate: bson.M{
			"persian":   p.GrantDate.Persian,
			"gregorian": p.GrantDate.Gregorian,
		},
		fieldExpiryDate: bson.M{
			"persian":   p.ExpiryDate.Persian,
			"gregorian": p.ExpiryDate.Gregorian,
		},
		fieldAddress: p.Address,
		fieldPhone:   p.Phone,
		fieldEmail:   p.Email,
		fieldLocation: bson.M{
			"latitude":  p.Location.Latitude,
			"longitude": p.Location.Longitude,
		},
		fieldBusinessExperience:  p.BusinessExperience,
		fieldBusinessHours:       p.BusinessHours,
		fieldBusinessServices:    services,
		fieldExtractionTimestamp: database.Date(p.ExtractionTimestamp),
		fieldDomainInfo: bson.M{
			"page_number": float64(p.DomainInfo.PageNumber),
			"row_index":   float64(p.DomainInfo.RowIndex),
			"row_number":  float64(p.DomainInfo.RowNumber),
			fieldProvince: p.DomainInfo.Province,
			"city":        p.DomainInfo.City,
			"domain_url":  p.DomainInfo.DomainURL,
		},
		fieldCreatedAt: database.Date(p.CreatedAt),
	}
}

func fromDocument(doc bson.M) (*model.Profile, error) {
	p := &model.Profile{ID: database.ID(doc)}
	var err error

	if p.BusinessName, err = database.StrOr(doc, fieldBusinessName, ""); err != nil {
		return nil, err
	}
	if p.WebsiteURL, err = database.Str(doc, fieldWebsiteURL); err != nil {
		return nil, err
	}
	if p.OwnerName, err = database.StrOr(doc, fieldOwnerName, ""); err != nil {
		return nil, err
	}
	if p.GrantDate, err = dualDate(doc, fieldGrantDate); err != nil {
		return nil, err
	}
	if p.ExpiryDate, err = dualDate(doc, fieldExpiryDate); err != nil {
		return nil, err
	}
	if p.Address, err = database.StrOr(doc, fieldAddress, ""); err != nil {
		return nil, err
	}
	if p.Phone, err = database.StrOr(doc, fieldPhone, ""); err != nil {
		return nil, err
	}
	if p.Email, err = database.StrOr(doc, fieldEmail, ""); err != nil {
		return nil, err
	}

	if loc, err := database.Doc(doc, fieldLocation); err != nil {
		return nil, err
	} else if loc != nil {
		if p.Location.Latitude, err = database.DoubleOr(loc, "latitude", 0); err != nil {
			return nil, err
		}
		if p.Location.Longitude, err = database.DoubleOr(loc, "longitude", 0); err != nil {
			return nil, err
		}
	}

	if p.BusinessExperience, err = database.StrOr(doc, fieldBusinessExperience, ""); err != nil {
		return nil, err
	}
	if p.BusinessHours, err = database.StrOr(doc, fieldBusinessHours, ""); err != nil {
		return nil, err
	}

	rows, err := database.DocSlice(doc, fieldBusinessServices)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		var svc model.Service
		if svc.RowNumber, err = database.IntOr(row, "row_number", 0); err != nil {
			return nil, err
		}
		if svc.ServiceTitle, err = database.StrOr(row, "service_title", ""); err != nil {
			return nil, err
		}
		if svc.PermitIssuer, err = database.StrOr(row, "permit_issuer", ""); err != nil {
			return nil, err
		}
		if svc.PermitNumber, err = database.StrOr(row, "permit_number", ""); err != nil {
			return nil, err
		}
		if svc.ValidityStartDate, err = database.StrOr(row, "validity_start_date", ""); err != nil {
			return nil, err
		}
		if svc.ValidityEndDate, err = database.StrOr(row, "validity_end_date", ""); err != nil {
			return nil, err
		}
		if svc.Status, err = database.StrOr(row, "status", ""); err != nil {
			return nil, err
		}
		p.BusinessServices = append(p.BusinessServices, svc)
	}

	if p.ExtractionTimestamp, err = database.TimeOr(doc, fieldExtractionTimestamp, p.CreatedAt); err != nil {
		return nil, err
	}

	if info, err := database.Doc(doc, fieldDomainInfo); err != nil {
		return nil, err
	} else if info != nil {
		if p.DomainInfo.PageNumber, err = database.IntOr(info, "page_number", 0); err != nil {
			return nil, err
		}
		if p.DomainInfo.RowIndex, err = database.IntOr(info, "row_index", 0); err != nil {
			return nil, err
		}
		if p.DomainInfo.RowNumber, err = database.IntOr(info, "row_number", 0); err != nil {
			return nil, err
		}
		if p.DomainInfo.Province, err = database.StrOr(info, fieldProvince, ""); err != nil {
			return nil, err
		}
		if p.DomainInfo.City, err = database.StrOr(info, "city", ""); err != nil {
			return nil, err
		}
		if p.DomainInfo.DomainURL, err = database.StrOr(info, "domain_url", ""); err != nil {
			return nil, err
		}
	}

	if p.CreatedAt, err = database.TimeOr(doc, fieldCreatedAt, p.ExtractionTimestamp); err != nil {
		return nil, err
	}

	return p, nil
}

func dualDate(doc bson.M, field string) (model.DualDate, error) {
	var d model.DualDate
	sub, err := database.Doc(doc, field)
	if err != nil {
		return d, err
	}
	if sub == nil {
		return d, nil
	}
	if d.Persian, err = database.StrOr(sub, "persian", ""); err != nil {
		return d, err
	}
	if d.Gregorian, err = database.StrOr(sub, "gregorian", ""); err != nil {
		return d, err
	}
	return d, nil
}
