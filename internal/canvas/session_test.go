package canvas

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
	"github.com/Brokwise/brokwise-developer/internal/plots"
)

// fakeStore counts every call so tests can assert exactly how much network
// traffic an operation produced.
type fakeStore struct {
	mu      sync.Mutex
	records []models.Plot

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	lastCreates []plots.CreatePlotInput
	lastPatches []plots.PlotPatch

	failCreate bool
	failUpdate bool
	failDelete map[uuid.UUID]bool

	// when set, BulkCreatePlots signals createEntered and then waits for
	// createGate, letting tests interleave session calls with an in-flight save
	createEntered chan struct{}
	createGate    chan struct{}
}

func (f *fakeStore) ListPlots(ctx context.Context, projectID uuid.UUID, _ plots.Filters) ([]models.Plot, plots.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]models.Plot, len(f.records))
	copy(out, f.records)
	return out, plots.Pagination{Page: 1, Limit: 500, Total: int64(len(out)), TotalPages: 1}, nil
}

func (f *fakeStore) BulkCreatePlots(ctx context.Context, projectID uuid.UUID, inputs []plots.CreatePlotInput) ([]models.Plot, int, error) {
	if f.createEntered != nil {
		close(f.createEntered)
	}
	if f.createGate != nil {
		<-f.createGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastCreates = inputs
	if f.failCreate {
		return nil, 0, errors.New("bulk create refused")
	}
	created := make([]models.Plot, 0, len(inputs))
	for _, in := range inputs {
		p := models.Plot{
			PlotID:         uuid.New(),
			ProjectID:      projectID,
			BlockID:        in.BlockID,
			PlotNumber:     in.PlotNumber,
			Area:           in.Area,
			AreaUnit:       in.AreaUnit,
			Facing:         in.Facing,
			PlotType:       in.PlotType,
			Price:          in.Price,
			PricePerUnit:   in.PricePerUnit,
			Status:         in.Status,
			CanvasPosition: in.CanvasPosition,
		}
		f.records = append(f.records, p)
		created = append(created, p)
	}
	return created, len(created), nil
}

func (f *fakeStore) BulkUpdatePlots(ctx context.Context, projectID uuid.UUID, patches []plots.PlotPatch) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.lastPatches = patches
	if f.failUpdate {
		return 0, 0, errors.New("bulk update refused")
	}
	var matched int64
	for _, patch := range patches {
		for i := range f.records {
			if f.records[i].PlotID != patch.PlotID {
				continue
			}
			if patch.CanvasPosition != nil {
				pos := *patch.CanvasPosition
				f.records[i].CanvasPosition = &pos
			}
			if v, ok := patch.Fields["plot_number"]; ok {
				f.records[i].PlotNumber = v.(string)
			}
			if v, ok := patch.Fields["price"]; ok {
				f.records[i].Price = v.(float64)
			}
			matched++
		}
	}
	return matched, matched, nil
}

func (f *fakeStore) DeletePlot(ctx context.Context, plotID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failDelete[plotID] {
		return false, errors.New("delete refused")
	}
	for i := range f.records {
		if f.records[i].PlotID == plotID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return true, nil
		}
	}
	return false, apperrors.NewNotFound("Plot")
}

func seededPlot(blockID uuid.UUID, number string, pos *models.CanvasPosition) models.Plot {
	return models.Plot{
		PlotID:         uuid.New(),
		BlockID:        blockID,
		PlotNumber:     number,
		Area:           1000,
		AreaUnit:       models.AreaUnitSqFt,
		Facing:         models.FacingNorth,
		PlotType:       models.PlotTypeRegular,
		Price:          50000,
		PricePerUnit:   50,
		Status:         models.PlotAvailable,
		CanvasPosition: pos,
	}
}

func setupSession(t *testing.T, records ...models.Plot) (*Session, *fakeStore) {
	store := &fakeStore{records: records, failDelete: map[uuid.UUID]bool{}}
	session := NewSession(uuid.New(), store)
	require.NoError(t, session.Seed(context.Background()))
	return session, store
}

func TestSeed_UsesStoredAndFallbackPositions(t *testing.T) {
	blockID := uuid.New()
	placed := seededPlot(blockID, "P-1", &models.CanvasPosition{X: 300, Y: 400, Width: 100, Height: 80})
	unplaced := seededPlot(blockID, "P-2", nil)
	session, _ := setupSession(t, placed, unplaced)

	state := session.State()
	require.Len(t, state.Nodes, 2)
	assert.Equal(t, 300.0, state.Nodes[0].Position.X)
	// second plot gets the deterministic grid fallback, sized from its area
	assert.Greater(t, state.Nodes[1].Position.Width, 0.0)
	assert.NotEqual(t, state.Nodes[0].Position, state.Nodes[1].Position)
}

func TestSeed_PreservesDraftsAndDirtyPositions(t *testing.T) {
	blockID := uuid.New()
	plot := seededPlot(blockID, "P-1", &models.CanvasPosition{X: 10, Y: 10, Width: 100, Height: 80})
	session, store := setupSession(t, plot)

	draft := session.AddDraft()
	moved := models.CanvasPosition{X: 555, Y: 666, Width: 100, Height: 80}
	require.NoError(t, session.MoveNode(plot.PlotID.String(), moved))

	require.NoError(t, session.Seed(context.Background()))

	state := session.State()
	require.Len(t, state.Nodes, 2)
	byID := map[string]Node{}
	for _, n := range state.Nodes {
		byID[n.ID] = n
	}
	// draft survived the re-seed
	_, ok := byID[draft.ID]
	assert.True(t, ok)
	// unsaved move beats the stored position
	assert.Equal(t, moved, byID[plot.PlotID.String()].Position)
	assert.GreaterOrEqual(t, store.listCalls, 2)
}

func TestAddDraft_TemplateDefaultsAndSoleSelection(t *testing.T) {
	session, store := setupSession(t)
	before := store.listCalls

	first := session.AddDraft()
	second := session.AddDraft()

	assert.True(t, first.IsNew)
	assert.Equal(t, defaultDraftArea, first.Data.Area)
	assert.Equal(t, models.AreaUnitSqFt, first.Data.AreaUnit)
	assert.Equal(t, models.PlotAvailable, first.Data.Status)
	// staggered spawn so drafts do not stack exactly
	assert.NotEqual(t, first.Position.X, second.Position.X)

	state := session.State()
	assert.Equal(t, []string{second.ID}, state.SelectedIDs)
	assert.Equal(t, 2, state.PendingCreates)

	// purely local: no store traffic at all
	assert.Equal(t, before, store.listCalls)
	assert.Zero(t, store.createCalls)
	assert.Zero(t, store.updateCalls)
	assert.Zero(t, store.deleteCalls)
}

func TestDuplicateSelected_CloneOfPersistedIsDraft(t *testing.T) {
	blockID := uuid.New()
	plot := seededPlot(blockID, "A-007", &models.CanvasPosition{X: 50, Y: 60, Width: 110, Height: 85})
	session, store := setupSession(t, plot)

	require.NoError(t, session.SetSelection([]string{plot.PlotID.String()}))
	clones := session.DuplicateSelected()
	require.Len(t, clones, 1)

	clone := clones[0]
	assert.True(t, clone.IsNew)
	assert.Equal(t, uuid.Nil, clone.PlotID)
	assert.Equal(t, "A-007-copy", clone.Data.PlotNumber)
	assert.Equal(t, 50.0+duplicateOffset, clone.Position.X)
	assert.Equal(t, 60.0+duplicateOffset, clone.Position.Y)
	assert.Equal(t, plot.Area, clone.Data.Area)

	// clones become the selection
	state := session.State()
	assert.Equal(t, []string{clone.ID}, state.SelectedIDs)
	assert.Zero(t, store.createCalls)
}

func TestDuplicateSelected_EmptySelection(t *testing.T) {
	session, _ := setupSession(t)
	assert.Nil(t, session.DuplicateSelected())
}

func TestSetSelection_RejectsUnknownID(t *testing.T) {
	session, _ := setupSession(t)
	err := session.SetSelection([]string{"draft-99"})
	require.Error(t, err)
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)
}

func TestUpdateField_PersistedNodeRecordsChangedColumn(t *testing.T) {
	blockID := uuid.New()
	plot := seededPlot(blockID, "A-001", nil)
	session, _ := setupSession(t, plot)
	id := plot.PlotID.String()

	require.NoError(t, session.SetSelection([]string{id}))
	require.NoError(t, session.UpdateField("price", 75000.0))

	state := session.State()
	assert.Equal(t, []string{id}, state.DirtyIDs)
	assert.Equal(t, 1, state.PendingMoves)
	for _, n := range state.Nodes {
		if n.ID == id {
			assert.Equal(t, 75000.0, n.Data.Price)
		}
	}
}

func TestUpdateField_AppliesToWholeSelection(t *testing.T) {
	blockID := uuid.New()
	p1 := seededPlot(blockID, "A-001", nil)
	p2 := seededPlot(blockID, "A-002", nil)
	session, _ := setupSession(t, p1, p2)

	require.NoError(t, session.SetSelection([]string{p1.PlotID.String(), p2.PlotID.String()}))
	require.NoError(t, session.UpdateField("facing", "EAST"))

	state := session.State()
	for _, n := range state.Nodes {
		assert.Equal(t, models.FacingEast, n.Data.Facing)
	}
	assert.Len(t, state.DirtyIDs, 2)
}

func TestUpdateField_ImmutableColumnsOnPersisted(t *testing.T) {
	blockID := uuid.New()
	plot := seededPlot(blockID, "A-001", nil)
	session, _ := setupSession(t, plot)
	require.NoError(t, session.SetSelection([]string{plot.PlotID.String()}))

	err := session.UpdateField("status", "sold")
	require.Error(t, err)
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)

	err = session.UpdateField("block_id", uuid.NewString())
	require.Error(t, err)
	_, ok = apperrors.IsValidation(err)
	assert.True(t, ok)
}

func TestUpdateField_DraftAcceptsBlockAndStatus(t *testing.T) {
	session, _ := setupSession(t)
	session.AddDraft()

	blockID := uuid.New()
	require.NoError(t, session.UpdateField("block_id", blockID.String()))
	require.NoError(t, session.UpdateField("status", "reserved"))
	require.NoError(t, session.UpdateField("plot_number", "D-01"))

	state := session.State()
	require.Len(t, state.Nodes, 1)
	assert.Equal(t, blockID, state.Nodes[0].Data.BlockID)
	assert.Equal(t, models.PlotReserved, state.Nodes[0].Data.Status)
	// drafts never enter the dirty set; they are saved in full
	assert.Empty(t, state.DirtyIDs)
}

func TestUpdateField_NoSelection(t *testing.T) {
	session, _ := setupSession(t)
	err := session.UpdateField("price", 100.0)
	require.Error(t, err)
	_, ok := apperrors.IsValidation(err)
	assert.True(t, ok)
}

func TestMoveNode_OnlyPersistedBecomesDirty(t *testing.T) {
	blockID := uuid.New()
	plot := seededPlot(blockID, "A-001", nil)
	session, _ := setupSession(t, plot)
	draft := session.AddDraft()

	pos := models.CanvasPosition{X: 1, Y: 2, Width: 120, Height: 90}
	require.NoError(t, session.MoveNode(plot.PlotID.String(), pos))
	require.NoError(t, session.MoveNode(draft.ID, pos))

	state := session.State()
	assert.Equal(t, []string{plot.PlotID.String()}, state.DirtyIDs)
	assert.Equal(t, 1, state.PendingMoves)
	assert.Equal(t, 1, state.PendingCreates)
}

func TestMoveNode_UnknownID(t *testing.T) {
	session, _ := setupSession(t)
	err := session.MoveNode("draft-404", models.CanvasPosition{})
	require.Error(t, err)
	_, ok := apperrors.IsNotFound(err)
	assert.True(t, ok)
}

func TestDeleteSelected_RequiresConfirmation(t *testing.T) {
	session, store := setupSession(t)
	session.AddDraft()

	_, err := session.DeleteSelected(context.Background(), false)
	require.Error(t, err)
	ve, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Details(), "confirm")
	assert.Zero(t, store.deleteCalls)

	// draft is still there
	assert.Equal(t, 1, session.State().PendingCreates)
}

func TestDeleteSelected_DraftsOnlyMakeNoNetworkCalls(t *testing.T) {
	session, store := setupSession(t)
	session.AddDraft()
	session.AddDraft()
	d1 := session.State().Nodes[0].ID
	d2 := session.State().Nodes[1].ID
	require.NoError(t, session.SetSelection([]string{d1, d2}))
	listBefore := store.listCalls

	result, err := session.DeleteSelected(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RemovedDrafts)
	assert.Equal(t, 0, result.Deleted)

	// zero store traffic: no deletes, not even a re-seed
	assert.Zero(t, store.deleteCalls)
	assert.Equal(t, listBefore, store.listCalls)
	assert.Empty(t, session.State().Nodes)
	assert.Empty(t, session.State().SelectedIDs)
}

func TestDeleteSelected_PersistedDeletionsAreIndependent(t *testing.T) {
	blockID := uuid.New()
	p1 := seededPlot(blockID, "A-001", nil)
	p2 := seededPlot(blockID, "A-002", nil)
	p3 := seededPlot(blockID, "A-003", nil)
	session, store := setupSession(t, p1, p2, p3)
	store.failDelete[p2.PlotID] = true

	require.NoError(t, session.SetSelection([]string{p1.PlotID.String(), p2.PlotID.String(), p3.PlotID.String()}))
	result, err := session.DeleteSelected(context.Background(), true)
	require.NoError(t, err)

	// one failure does not stop the other deletions
	assert.Equal(t, 2, result.Deleted)
	assert.Equal(t, []string{p2.PlotID.String()}, result.Failed)
	assert.Equal(t, 3, store.deleteCalls)
	assert.Contains(t, result.Summary, "1 deletion(s) failed")

	// re-seeded: the failed plot is still on the canvas, the others are gone
	state := session.State()
	require.Len(t, state.Nodes, 1)
	assert.Equal(t, p2.PlotID.String(), state.Nodes[0].ID)
	assert.Empty(t, state.SelectedIDs)
}

func TestSave_NoOp(t *testing.T) {
	blockID := uuid.New()
	session, store := setupSession(t, seededPlot(blockID, "A-001", nil))
	listBefore := store.listCalls

	result, err := session.Save(context.Background())
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Equal(t, "nothing to save", result.Summary)
	assert.Zero(t, store.createCalls)
	assert.Zero(t, store.updateCalls)
	assert.Equal(t, listBefore, store.listCalls)
}

func TestSave_EndToEnd(t *testing.T) {
	blockID := uuid.New()
	persisted := seededPlot(blockID, "A-001", &models.CanvasPosition{X: 10, Y: 10, Width: 100, Height: 80})
	session, store := setupSession(t, persisted)

	// three drafts, each fully filled in
	for i, number := range []string{"D-01", "D-02", "D-03"} {
		session.AddDraft()
		require.NoError(t, session.UpdateField("block_id", blockID.String()))
		require.NoError(t, session.UpdateField("plot_number", number))
		require.NoError(t, session.UpdateField("price_per_unit", 40.0+float64(i)))
		require.NoError(t, session.UpdateField("price", 48000.0))
	}
	// one move of the persisted plot
	moved := models.CanvasPosition{X: 200, Y: 300, Width: 100, Height: 80}
	require.NoError(t, session.MoveNode(persisted.PlotID.String(), moved))

	result, err := session.Save(context.Background())
	require.NoError(t, err)

	// exactly one bulk call per half
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, 1, store.updateCalls)
	require.Len(t, store.lastCreates, 3)
	require.Len(t, store.lastPatches, 1)

	assert.Equal(t, persisted.PlotID, store.lastPatches[0].PlotID)
	require.NotNil(t, store.lastPatches[0].CanvasPosition)
	assert.Equal(t, moved, *store.lastPatches[0].CanvasPosition)
	// untouched fields are not transmitted
	assert.Empty(t, store.lastPatches[0].Fields)

	assert.Equal(t, 3, result.CreatedCount)
	assert.Equal(t, int64(1), result.MatchedCount)
	assert.False(t, result.NoOp)
	assert.Empty(t, result.CreateError)
	assert.Empty(t, result.UpdateError)

	// the re-seeded working set adopted server ids: no drafts, nothing dirty
	state := session.State()
	require.Len(t, state.Nodes, 4)
	for _, n := range state.Nodes {
		assert.False(t, n.IsNew)
		assert.NotEqual(t, uuid.Nil, n.PlotID)
	}
	assert.Empty(t, state.DirtyIDs)
	assert.Empty(t, state.SelectedIDs)
	assert.Equal(t, 0, state.PendingCreates)
	assert.Equal(t, 0, state.PendingMoves)
}

func TestSave_TransmitsEditedFieldsOfPersistedNodes(t *testing.T) {
	blockID := uuid.New()
	plot := seededPlot(blockID, "A-001", &models.CanvasPosition{X: 1, Y: 1, Width: 100, Height: 80})
	session, store := setupSession(t, plot)

	require.NoError(t, session.SetSelection([]string{plot.PlotID.String()}))
	require.NoError(t, session.UpdateField("price", 99000.0))
	require.NoError(t, session.UpdateField("plot_number", "A-001-R"))

	_, err := session.Save(context.Background())
	require.NoError(t, err)

	require.Len(t, store.lastPatches, 1)
	fields := store.lastPatches[0].Fields
	assert.Equal(t, 99000.0, fields["price"])
	assert.Equal(t, "A-001-R", fields["plot_number"])

	state := session.State()
	assert.Empty(t, state.DirtyIDs)
	for _, n := range state.Nodes {
		assert.Equal(t, "A-001-R", n.Data.PlotNumber)
		assert.Equal(t, 99000.0, n.Data.Price)
	}
}

func TestSave_CreateFailureKeepsDraftsAndClearsDirty(t *testing.T) {
	blockID := uuid.New()
	plot := seededPlot(blockID, "A-001", &models.CanvasPosition{X: 1, Y: 1, Width: 100, Height: 80})
	session, store := setupSession(t, plot)
	store.failCreate = true

	session.AddDraft()
	require.NoError(t, session.UpdateField("block_id", blockID.String()))
	require.NoError(t, session.MoveNode(plot.PlotID.String(), models.CanvasPosition{X: 9, Y: 9, Width: 100, Height: 80}))

	result, err := session.Save(context.Background())
	require.NoError(t, err)

	// both halves were attempted despite the create failing
	assert.Equal(t, 1, store.createCalls)
	assert.Equal(t, 1, store.updateCalls)
	assert.NotEmpty(t, result.CreateError)
	assert.Empty(t, result.UpdateError)
	assert.Equal(t, int64(1), result.MatchedCount)
	assert.Contains(t, result.Summary, "bulk create failed")

	state := session.State()
	// failed drafts stay on the canvas for retry; the successful update settled
	assert.Equal(t, 1, state.PendingCreates)
	assert.Empty(t, state.DirtyIDs)
	// selection kept because the save did not fully succeed
	assert.NotEmpty(t, state.SelectedIDs)
}

func TestSave_DraftAddedMidFlightSurvives(t *testing.T) {
	session, store := setupSession(t)
	store.createEntered = make(chan struct{})
	store.createGate = make(chan struct{})

	session.AddDraft()

	type outcome struct {
		result SaveResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := session.Save(context.Background())
		done <- outcome{result, err}
	}()

	// with the bulk create in flight, a second draft lands on the canvas
	<-store.createEntered
	late := session.AddDraft()
	close(store.createGate)
	out := <-done
	require.NoError(t, out.err)

	// only the first draft was transmitted
	assert.Equal(t, 1, out.result.CreatedCount)
	assert.Len(t, store.lastCreates, 1)

	// the late draft was never part of the payload and is still pending
	state := session.State()
	assert.Equal(t, 1, state.PendingCreates)
	ids := make([]string, 0, len(state.Nodes))
	for _, n := range state.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Contains(t, ids, late.ID)
}

func TestDiscardDrafts(t *testing.T) {
	blockID := uuid.New()
	plot := seededPlot(blockID, "A-001", nil)
	session, store := setupSession(t, plot)
	session.AddDraft()
	session.AddDraft()
	require.NoError(t, session.MoveNode(plot.PlotID.String(), models.CanvasPosition{X: 7, Y: 7, Width: 10, Height: 10}))

	discarded := session.DiscardDrafts()
	assert.Equal(t, 2, discarded)

	state := session.State()
	require.Len(t, state.Nodes, 1)
	assert.Equal(t, 0, state.PendingCreates)
	assert.Empty(t, state.DirtyIDs)
	assert.Zero(t, store.createCalls)
	assert.Zero(t, store.deleteCalls)
}

func TestManager_OpenReplacesAndCloseDrops(t *testing.T) {
	blockID := uuid.New()
	store := &fakeStore{records: []models.Plot{seededPlot(blockID, "A-001", nil)}, failDelete: map[uuid.UUID]bool{}}
	manager := NewManager(store)
	projectID := uuid.New()
	ctx := context.Background()

	first, err := manager.Open(ctx, projectID)
	require.NoError(t, err)
	first.AddDraft()

	// reopening starts clean
	second, err := manager.Open(ctx, projectID)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, second.State().PendingCreates)

	got, ok := manager.Get(projectID)
	require.True(t, ok)
	assert.Same(t, second, got)

	manager.Close(projectID)
	_, ok = manager.Get(projectID)
	assert.False(t, ok)
}
