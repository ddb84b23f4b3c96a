package contact

import (
	"context"
	"net/http"

	"county-task-api/entity"
	"county-task-api/pkg/exception"
	"county-task-api/pkg/policy"
	"county-task-api/pkg/response"

	"github.com/sirupsen/logrus"
)

// defaultContactRoles seeds every county's contact sheet. A sheet read always
// contains at least these rows, in this order.
var defaultContactRoles = []string{
	"County Manager / Administrator",
	"Assistant County Manager",
	"County Commission Chair / Board of Commissioners",
	"County Clerk / Clerk of the Board",
	"Chief Financial Officer (CFO) / Finance Director",
	"Budget Director",
	"Grants Manager / Grants Coordinator",
	"Procurement / Purchasing Director",
	"Accounts Payable / Receivable Manager",
	"County Attorney / Legal Counsel",
	"Compliance Officer",
	"Risk Management Director",
	"Insurance / Claims Manager",
	"Open Records / FOIA Officer",
	"Elections Supervisor",
	"Registrar",
	"Records Manager",
	"Deeds & Records Clerk",
}

type CountyStore interface {
	FindOneById(ctx context.Context, id int64) (entity.County, error)
}

type ContactUsecase interface {
	GetContacts(ctx context.Context, actor entity.User, countyID int64) (resp response.Response)
	UpdateContacts(ctx context.Context, actor entity.User, countyID int64, payload UpdateContactsRequest) (resp response.Response)
}

type contactUsecase struct {
	logger            *logrus.Logger
	contactRepository ContactRepository
	counties          CountyStore
}

func NewContactUsecase(logger *logrus.Logger, contactRepository ContactRepository, counties CountyStore) ContactUsecase {
	return &contactUsecase{
		logger:            logger,
		contactRepository: contactRepository,
		counties:          counties,
	}
}

// GetContacts implements Usecase. Reading a sheet lazily seeds the default
// roles: a brand-new county gets the full default sheet, and a sheet missing
// some default roles gets them appended without touching the filled rows.
func (u *contactUsecase) GetContacts(ctx context.Context, actor entity.User, countyID int64) (resp response.Response) {
	if !policy.CanAccessCounty(actor, countyID) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	if _, err := u.counties.FindOneById(ctx, countyID); err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "County not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	entries, err := u.contactRepository.FindManyByCountyId(ctx, countyID)
	if err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	missing := missingDefaultEntries(entries, len(entries))
	if len(missing) > 0 {
		if err := u.contactRepository.InsertEntries(ctx, countyID, missing); err != nil {
			u.logger.WithContext(ctx).Error(err)
			return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
		}
		entries = append(entries, missing...)
	}

	return response.NewSuccessResponse(toContactSheetResponse(countyID, entries), response.StatOK, "")
}

// UpdateContacts implements Usecase. The payload replaces the whole sheet; a
// row's position is its index in the payload.
func (u *contactUsecase) UpdateContacts(ctx context.Context, actor entity.User, countyID int64, payload UpdateContactsRequest) (resp response.Response) {
	if !policy.CanAccessCounty(actor, countyID) {
		return response.NewErrorResponse(exception.ErrForbidden, http.StatusForbidden, nil, response.StatForbidden, "Access denied")
	}

	if _, err := u.counties.FindOneById(ctx, countyID); err != nil {
		if err == exception.ErrNotFound {
			return response.NewErrorResponse(err, http.StatusNotFound, nil, response.StatNotFound, "County not found")
		}
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	entries := make([]entity.ContactEntry, len(payload.Contacts))
	for i, c := range payload.Contacts {
		entries[i] = entity.ContactEntry{
			CountyID: countyID,
			Position: i,
			Role:     c.Role,
			Name:     c.Name,
			Email:    c.Email,
			Phone:    c.Phone,
		}
	}

	if err := u.contactRepository.ReplaceForCounty(ctx, countyID, entries); err != nil {
		u.logger.WithContext(ctx).Error(err)
		return response.NewErrorResponse(err, http.StatusInternalServerError, nil, response.StatUnexpectedError, "")
	}

	return response.NewSuccessResponse(toContactSheetResponse(countyID, entries), response.StatOK, "Contacts updated successfully")
}

func missingDefaultEntries(existing []entity.ContactEntry, nextPosition int) (missing []entity.ContactEntry) {
	present := make(map[string]bool, len(existing))
	for _, entry := range existing {
		present[entry.Role] = true
	}

	for _, role := range defaultContactRoles {
		if present[role] {
			continue
		}
		missing = append(missing, entity.ContactEntry{Position: nextPosition, Role: role})
		nextPosition++
	}
	return
}

func toContactSheetResponse(countyID int64, entries []entity.ContactEntry) ContactSheetResponse {
	contacts := make([]ContactEntryResponse, len(entries))
	for i, entry := range entries {
		contacts[i] = ContactEntryResponse{
			Role:  entry.Role,
			Name:  entry.Name,
			Email: entry.Email,
			Phone: entry.Phone,
		}
	}
	return ContactSheetResponse{CountyID: countyID, Contacts: contacts}
}
