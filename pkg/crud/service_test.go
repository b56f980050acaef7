package crud

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/entityaxis/internal/memory"
	"github.com/mesh-intelligence/entityaxis/pkg/keymap"
	"github.com/mesh-intelligence/entityaxis/pkg/mapping"
	"github.com/mesh-intelligence/entityaxis/pkg/types"
)

type gadget struct {
	ID      string
	Name    string
	Price   int
	Created time.Time
}

func (g *gadget) GetID() string   { return g.ID }
func (g *gadget) SetID(id string) { g.ID = id }

type gadgetRecord struct {
	ID      int
	Name    string
	Price   int
	Created time.Time
}

func (r *gadgetRecord) GetID() int   { return r.ID }
func (r *gadgetRecord) SetID(id int) { r.ID = id }

type gadgetService = Service[*gadget, string, *gadgetRecord, int]

var _ types.EntityService[*gadget, string] = (*gadgetService)(nil)

func newMapper(t *testing.T) *mapping.Mapper {
	t.Helper()
	m := mapping.New()
	require.NoError(t, mapping.Register(m, mapping.ByName[*gadget, *gadgetRecord]("ID")))
	require.NoError(t, mapping.Register(m, mapping.ByName[*gadgetRecord, *gadget]("ID")))
	return m
}

// spyEngine counts handles opened and closed.
type spyEngine[D types.Entity[DK], DK comparable] struct {
	inner  types.Engine[D, DK]
	opened int
	closed int
}

func (s *spyEngine[D, DK]) Open(ctx context.Context) (types.Handle[D, DK], error) {
	h, err := s.inner.Open(ctx)
	if err != nil {
		return nil, err
	}
	s.opened++
	return &spyHandle[D, DK]{Handle: h, spy: s}, nil
}

type spyHandle[D types.Entity[DK], DK comparable] struct {
	types.Handle[D, DK]
	spy *spyEngine[D, DK]
}

func (h *spyHandle[D, DK]) Close() error {
	h.spy.closed++
	return h.Handle.Close()
}

func newService(t *testing.T) (*gadgetService, *spyEngine[*gadgetRecord, int]) {
	t.Helper()
	spy := &spyEngine[*gadgetRecord, int]{inner: memory.New[*gadgetRecord, int]("gadgets", memory.IntKeys())}
	svc, err := New[*gadget, string, *gadgetRecord, int](spy, newMapper(t), keymap.StringToInt{})
	require.NoError(t, err)
	return svc, spy
}

func seed(t *testing.T, svc *gadgetService, n int) []string {
	t.Helper()
	var ids []string
	for i := 0; i < n; i++ {
		id, err := svc.Create(context.Background(), &gadget{Name: fmt.Sprintf("g%02d", i), Price: i})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestNewRequiresMappings(t *testing.T) {
	engine := memory.New[*gadgetRecord, int]("gadgets", memory.IntKeys())

	_, err := New[*gadget, string, *gadgetRecord, int](engine, mapping.New(), keymap.StringToInt{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingMapping)
	assert.Contains(t, err.Error(), "*crud.gadget")
	assert.Contains(t, err.Error(), "*crud.gadgetRecord")

	_, err = New[*gadget, string, *gadgetRecord, int](nil, nil, nil)
	assert.Error(t, err)
}

func TestNameDefaultsToTypeName(t *testing.T) {
	svc, _ := newService(t)
	assert.Equal(t, "gadget", svc.Name())

	engine := memory.New[*gadgetRecord, int]("gadgets", memory.IntKeys())
	named, err := New[*gadget, string, *gadgetRecord, int](engine, newMapper(t), keymap.StringToInt{}, WithName("Gizmo"))
	require.NoError(t, err)
	assert.Equal(t, "Gizmo", named.Name())
}

func TestCreateThenGetByID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	in := &gadget{Name: "lamp", Price: 40, Created: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

	id, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	got, ok, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	want := *in
	want.ID = id
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("GetByID mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateWithoutKeyAssignment(t *testing.T) {
	engine := memory.New[*gadgetRecord, int]("gadgets", nil)
	svc, err := New[*gadget, string, *gadgetRecord, int](engine, newMapper(t), keymap.StringToInt{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &gadget{Name: "x"})
	assert.ErrorIs(t, err, types.ErrKeyAssignment)
}

func TestGetByIDAbsent(t *testing.T) {
	svc, _ := newService(t)

	got, ok, err := svc.GetByID(context.Background(), "42")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGetByIDUnmappable(t *testing.T) {
	svc, spy := newService(t)

	_, _, err := svc.GetByID(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, types.ErrUnmappableKey)
	assert.Zero(t, spy.opened)
}

func TestUpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	engine := memory.New[*gadgetRecord, int]("gadgets", memory.IntKeys())
	m := newMapper(t)
	// An overlay that tries to rewrite the key must not change identity.
	require.NoError(t, mapping.Register[*gadget, *gadgetRecord](m, func(src *gadget, dst *gadgetRecord) error {
		dst.ID = 999
		dst.Name = src.Name
		dst.Price = src.Price
		return nil
	}))
	svc, err := New[*gadget, string, *gadgetRecord, int](engine, m, keymap.StringToInt{})
	require.NoError(t, err)

	id, err := svc.Create(ctx, &gadget{Name: "before", Price: 1})
	require.NoError(t, err)

	got, err := svc.Update(ctx, &gadget{ID: id, Name: "after", Price: 2})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	stored, ok, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, "after", stored.Name)

	_, ok, err = svc.GetByID(ctx, "999")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, engine.Len())
}

func TestUpdateKeepsFieldsOutsideTheModel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	id, err := svc.Create(ctx, &gadget{Name: "a", Price: 5, Created: created})
	require.NoError(t, err)

	_, err = svc.Update(ctx, &gadget{ID: id, Name: "b", Price: 6, Created: created})
	require.NoError(t, err)

	got, _, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)
	assert.True(t, created.Equal(got.Created))
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(context.Background(), &gadget{ID: "7", Name: "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)

	var nf *types.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "gadget", nf.Entity)
	assert.Equal(t, "7", nf.Key)
	assert.Contains(t, err.Error(), `unable to find gadget with ID "7"`)
}

func TestUpdateUnmappableIsNotNotFound(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "empty key", id: ""},
		{name: "zero key", id: "0"},
		{name: "not a number", id: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, spy := newService(t)
			seed(t, svc, 1)
			opened := spy.opened

			_, err := svc.Update(context.Background(), &gadget{ID: tt.id, Name: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrUnmappableKey)
			assert.NotErrorIs(t, err, types.ErrNotFound)
			assert.Equal(t, opened, spy.opened, "no handle is opened for an unmappable key")
		})
	}
}

type ticket struct {
	ID    string
	Title string
}

func (tk *ticket) GetID() string   { return tk.ID }
func (tk *ticket) SetID(id string) { tk.ID = id }

type ticketRecord struct {
	ID    uuid.UUID
	Title string
}

func (r *ticketRecord) GetID() uuid.UUID   { return r.ID }
func (r *ticketRecord) SetID(id uuid.UUID) { r.ID = id }

func TestNilUUIDKeyIsUnmappable(t *testing.T) {
	ctx := context.Background()
	m := mapping.New()
	require.NoError(t, mapping.Register(m, mapping.ByName[*ticket, *ticketRecord]("ID")))
	require.NoError(t, mapping.Register(m, mapping.ByName[*ticketRecord, *ticket]("ID")))
	engine := memory.New[*ticketRecord, uuid.UUID]("tickets", memory.UUIDKeys())
	svc, err := New[*ticket, string, *ticketRecord, uuid.UUID](engine, m, keymap.StringToUUID{})
	require.NoError(t, err)

	nilKey := uuid.Nil.String()

	_, err = svc.Update(ctx, &ticket{ID: nilKey, Title: "x"})
	assert.ErrorIs(t, err, types.ErrUnmappableKey)
	assert.NotErrorIs(t, err, types.ErrNotFound)

	_, _, err = svc.GetByID(ctx, nilKey)
	assert.ErrorIs(t, err, types.ErrUnmappableKey)

	assert.ErrorIs(t, svc.Delete(ctx, nilKey), types.ErrUnmappableKey)
}

func TestUpdateNilEntity(t *testing.T) {
	svc, spy := newService(t)

	var nilGadget *gadget
	_, err := svc.Update(context.Background(), nilGadget)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidData)
	assert.Zero(t, spy.opened)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	ids := seed(t, svc, 2)

	require.NoError(t, svc.Delete(ctx, ids[0]))
	require.NoError(t, svc.Delete(ctx, ids[0]))
	require.NoError(t, svc.Delete(ctx, "12345"))
	require.NoError(t, svc.Delete(ctx, "12345"))

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ids[1], all[0].ID)
}

func TestDeleteUnmappable(t *testing.T) {
	svc, _ := newService(t)
	assert.ErrorIs(t, svc.Delete(context.Background(), "   "), types.ErrUnmappableKey)
}

func TestGetAllEmptyIsNotNil(t *testing.T) {
	svc, _ := newService(t)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestGetPaged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	ids := seed(t, svc, 10)

	tests := []struct {
		name      string
		page      int
		size      int
		wantIDs   []string
		wantPages int
	}{
		{name: "second page of three", page: 2, size: 3, wantIDs: ids[3:6], wantPages: 4},
		{name: "last partial page", page: 4, size: 3, wantIDs: ids[9:], wantPages: 4},
		{name: "past the end", page: 5, size: 3, wantIDs: []string{}, wantPages: 4},
		{name: "single page", page: 1, size: 50, wantIDs: ids, wantPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GetPaged(ctx, tt.page, tt.size)
			require.NoError(t, err)

			got := []string{}
			for _, g := range res.Items() {
				got = append(got, g.ID)
			}
			assert.Equal(t, tt.wantIDs, got)
			assert.Equal(t, 10, res.TotalItemCount())
			assert.Equal(t, tt.page, res.PageNumber())
			assert.Equal(t, tt.size, res.PageSize())
			assert.Equal(t, tt.wantPages, res.TotalPages())
		})
	}
}

func TestGetPagedRejectsBeforeStorage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		size      int
		wantParam string
	}{
		{name: "page zero", page: 0, size: 3, wantParam: "page"},
		{name: "negative page", page: -1, size: 3, wantParam: "page"},
		{name: "size zero", page: 1, size: 0, wantParam: "pageSize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, spy := newService(t)

			_, err := svc.GetPaged(context.Background(), tt.page, tt.size)
			require.ErrorIs(t, err, types.ErrInvalidPaging)

			var perr *types.PagingError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantParam, perr.Param)
			assert.Zero(t, spy.opened)
		})
	}
}

func TestGetPagedHugePage(t *testing.T) {
	svc, _ := newService(t)
	seed(t, svc, 2)

	res, err := svc.GetPaged(context.Background(), 1<<62, 1<<10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 2, res.TotalItemCount())
}

func TestCanceledContextIsNotNotFound(t *testing.T) {
	svc, spy := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, &gadget{Name: "x"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.Update(ctx, &gadget{ID: "1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "1"), context.Canceled)

	_, _, err = svc.GetByID(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.GetAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.GetPaged(ctx, 1, 1)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Zero(t, spy.opened)
}

func TestHandlesClosedOnEveryPath(t *testing.T) {
	ctx := context.Background()
	svc, spy := newService(t)
	ids := seed(t, svc, 3)

	_, _ = svc.Update(ctx, &gadget{ID: ids[0], Name: "u"})
	_, _ = svc.Update(ctx, &gadget{ID: "404", Name: "missing"})
	_ = svc.Delete(ctx, ids[1])
	_ = svc.Delete(ctx, "404")
	_, _, _ = svc.GetByID(ctx, ids[2])
	_, _ = svc.GetAll(ctx)
	_, _ = svc.GetPaged(ctx, 1, 2)

	assert.Positive(t, spy.opened)
	assert.Equal(t, spy.opened, spy.closed)
}

func TestDeadlineExceeded(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.GetAll(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
