package contact

import (
	"context"
	"io"
	"net/http"
	"testing"

	"county-task-api/entity"
	"county-task-api/pkg/exception"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContactRepository struct {
	entries map[int64][]entity.ContactEntry
}

func newFakeContactRepository() *fakeContactRepository {
	return &fakeContactRepository{entries: make(map[int64][]entity.ContactEntry)}
}

func (f *fakeContactRepository) FindManyByCountyId(ctx context.Context, countyID int64) ([]entity.ContactEntry, error) {
	return f.entries[countyID], nil
}

func (f *fakeContactRepository) InsertEntries(ctx context.Context, countyID int64, entries []entity.ContactEntry) error {
	f.entries[countyID] = append(f.entries[countyID], entries...)
	return nil
}

func (f *fakeContactRepository) ReplaceForCounty(ctx context.Context, countyID int64, entries []entity.ContactEntry) error {
	f.entries[countyID] = entries
	return nil
}

func (f *fakeContactRepository) DeleteManyByCountyId(ctx context.Context, countyID int64) error {
	delete(f.entries, countyID)
	return nil
}

type fakeCountyStore struct {
	counties map[int64]entity.County
}

func (f *fakeCountyStore) FindOneById(ctx context.Context, id int64) (entity.County, error) {
	c, ok := f.counties[id]
	if !ok {
		return entity.County{}, exception.ErrNotFound
	}
	return c, nil
}

func newContactFixture() (*fakeContactRepository, *fakeCountyStore, ContactUsecase) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := newFakeContactRepository()
	counties := &fakeCountyStore{counties: make(map[int64]entity.County)}
	return repo, counties, NewContactUsecase(logger, repo, counties)
}

var admin = entity.User{ID: 1, Role: entity.RoleAdmin}

func TestGetContactsSeedsDefaults(t *testing.T) {
	repo, counties, usecase := newContactFixture()
	counties.counties[5] = entity.County{ID: 5, Name: "Hamilton"}

	resp := usecase.GetContacts(context.Background(), admin, 5)

	require.Nil(t, resp.Err)
	data, ok := resp.Data.(ContactSheetResponse)
	require.True(t, ok)
	require.Len(t, data.Contacts, len(defaultContactRoles))
	assert.Equal(t, "County Manager / Administrator", data.Contacts[0].Role)
	assert.Equal(t, "Deeds & Records Clerk", data.Contacts[len(data.Contacts)-1].Role)
	assert.Len(t, repo.entries[5], len(defaultContactRoles))
}

func TestGetContactsAppendsMissingDefaults(t *testing.T) {
	repo, counties, usecase := newContactFixture()
	counties.counties[5] = entity.County{ID: 5, Name: "Hamilton"}
	repo.entries[5] = []entity.ContactEntry{
		{CountyID: 5, Position: 0, Role: "Budget Director", Name: "Pat Doe", Email: "pat@hamilton.gov"},
	}

	resp := usecase.GetContacts(context.Background(), admin, 5)

	require.Nil(t, resp.Err)
	data, ok := resp.Data.(ContactSheetResponse)
	require.True(t, ok)
	require.Len(t, data.Contacts, len(defaultContactRoles))

	// the filled row survives the re-seed
	assert.Equal(t, "Budget Director", data.Contacts[0].Role)
	assert.Equal(t, "Pat Doe", data.Contacts[0].Name)

	roleCount := make(map[string]int)
	for _, c := range data.Contacts {
		roleCount[c.Role]++
	}
	assert.Equal(t, 1, roleCount["Budget Director"])
}

func TestGetContactsForeignCounty(t *testing.T) {
	_, counties, usecase := newContactFixture()
	counties.counties[6] = entity.County{ID: 6, Name: "Davidson"}

	countyID := int64(5)
	actor := entity.User{ID: 10, Role: entity.RoleCountyUser, CountyID: &countyID}
	resp := usecase.GetContacts(context.Background(), actor, 6)

	assert.Equal(t, http.StatusForbidden, resp.HTTPCode)
}

func TestGetContactsUnknownCounty(t *testing.T) {
	_, _, usecase := newContactFixture()

	resp := usecase.GetContacts(context.Background(), admin, 42)

	assert.Equal(t, http.StatusNotFound, resp.HTTPCode)
}

func TestUpdateContactsReplacesSheet(t *testing.T) {
	repo, counties, usecase := newContactFixture()
	counties.counties[5] = entity.County{ID: 5, Name: "Hamilton"}
	repo.entries[5] = []entity.ContactEntry{
		{CountyID: 5, Position: 0, Role: "Budget Director"},
		{CountyID: 5, Position: 1, Role: "Registrar"},
	}

	resp := usecase.UpdateContacts(context.Background(), admin, 5, UpdateContactsRequest{
		Contacts: []ContactEntryRequest{
			{Role: "Compliance Officer", Name: "Sam Lee", Email: "sam@hamilton.gov", Phone: "555-0100"},
		},
	})

	require.Nil(t, resp.Err)
	require.Len(t, repo.entries[5], 1)
	assert.Equal(t, "Compliance Officer", repo.entries[5][0].Role)
	assert.Equal(t, 0, repo.entries[5][0].Position)
	assert.Equal(t, "Sam Lee", repo.entries[5][0].Name)
}

func TestUpdateContactsCountyUserOwnCounty(t *testing.T) {
	repo, counties, usecase := newContactFixture()
	counties.counties[5] = entity.County{ID: 5, Name: "Hamilton"}

	countyID := int64(5)
	actor := entity.User{ID: 10, Role: entity.RoleCountyUser, CountyID: &countyID}
	resp := usecase.UpdateContacts(context.Background(), actor, 5, UpdateContactsRequest{
		Contacts: []ContactEntryRequest{{Role: "Registrar", Name: "Lee Park"}},
	})

	require.Nil(t, resp.Err)
	assert.Len(t, repo.entries[5], 1)
}
