// Package canvas owns the editable working set of the plot layout editor: it
// seeds nodes from persisted plots, tracks local drafts and unsaved moves,
// and diffs the working set into minimal bulk create/update calls on save.
package canvas

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Brokwise/brokwise-developer/internal/models"
	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
	"github.com/Brokwise/brokwise-developer/internal/plots"
)

// Store is the persistence boundary the reconciler talks to. Implemented by
// the plots service in production and by fakes in tests.
type Store interface {
	ListPlots(ctx context.Context, projectID uuid.UUID, f plots.Filters) ([]models.Plot, plots.Pagination, error)
	BulkCreatePlots(ctx context.Context, projectID uuid.UUID, inputs []plots.CreatePlotInput) ([]models.Plot, int, error)
	BulkUpdatePlots(ctx context.Context, projectID uuid.UUID, patches []plots.PlotPatch) (int64, int64, error)
	DeletePlot(ctx context.Context, plotID uuid.UUID) (bool, error)
}

// Session is one project's canvas editing session. All state is owned by the
// session and dropped when it is closed; operations are serialized by the
// mutex, so a save blocks the session until both bulk calls settle.
type Session struct {
	mu        sync.Mutex
	projectID uuid.UUID
	store     Store

	nodes    []*Node
	selected map[string]struct{}
	dirty    map[string]struct{}
	// changed records edited columns per persisted node id, transmitted
	// alongside the position on save.
	changed  map[string]map[string]interface{}
	draftSeq int
}

// NewSession builds an empty session for a project. Call Seed before use.
func NewSession(projectID uuid.UUID, store Store) *Session {
	return &Session{
		projectID: projectID,
		store:     store,
		selected:  map[string]struct{}{},
		dirty:     map[string]struct{}{},
		changed:   map[string]map[string]interface{}{},
	}
}

// Seed refreshes the working set from the persistence boundary. Local drafts
// always survive; persisted nodes are replaced 1:1 by id, keeping the local
// position of any node still marked dirty.
func (s *Session) Seed(ctx context.Context) error {
	fetched, err := s.fetchAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merge(fetched)
	return nil
}

func (s *Session) fetchAll(ctx context.Context) ([]models.Plot, error) {
	var all []models.Plot
	page := 1
	for {
		batch, pagination, err := s.store.ListPlots(ctx, s.projectID, plots.Filters{Page: page, Limit: 500})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if page >= pagination.TotalPages || len(batch) == 0 {
			break
		}
		page++
	}
	return all, nil
}

func (s *Session) merge(fetched []models.Plot) {
	prev := make(map[string]*Node, len(s.nodes))
	for _, n := range s.nodes {
		prev[n.ID] = n
	}

	next := make([]*Node, 0, len(fetched))
	alive := make(map[string]struct{}, len(fetched))
	for i, p := range fetched {
		n := nodeFromPlot(p, i)
		if old, ok := prev[n.ID]; ok {
			if _, isDirty := s.dirty[n.ID]; isDirty {
				// Unsaved local move wins over the stored position.
				n.Position = old.Position
				n.Data = old.Data
			}
		}
		next = append(next, n)
		alive[n.ID] = struct{}{}
	}
	for _, n := range s.nodes {
		if n.IsNew {
			next = append(next, n)
			alive[n.ID] = struct{}{}
		}
	}
	s.nodes = next

	for id := range s.selected {
		if _, ok := alive[id]; !ok {
			delete(s.selected, id)
		}
	}
	for id := range s.dirty {
		if _, ok := alive[id]; !ok {
			delete(s.dirty, id)
			delete(s.changed, id)
		}
	}
}

// AddDraft appends a new draft node with template defaults and makes it the
// sole selection.
func (s *Session) AddDraft() *Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	draftCount := 0
	for _, n := range s.nodes {
		if n.IsNew {
			draftCount++
		}
	}
	s.draftSeq++
	node := &Node{
		ID:    draftID(s.draftSeq),
		IsNew: true,
		Data: NodeData{
			Area:     defaultDraftArea,
			AreaUnit: models.AreaUnitSqFt,
			Facing:   models.FacingNorth,
			PlotType: models.PlotTypeRegular,
			Status:   models.PlotAvailable,
		},
		Position: models.CanvasPosition{
			X:      draftSpawnX + float64(draftCount)*draftSpawnStep,
			Y:      draftSpawnY + float64(draftCount)*draftSpawnStep,
			Width:  defaultNodeWidth,
			Height: defaultNodeHeight,
		},
	}
	s.nodes = append(s.nodes, node)
	s.selected = map[string]struct{}{node.ID: {}}
	return node
}

// DuplicateSelected clones every selected node as a fresh draft, offset by a
// fixed delta and suffixed with a copy marker. No-op on empty selection.
func (s *Session) DuplicateSelected() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selected) == 0 {
		return nil
	}
	var clones []*Node
	for _, n := range s.nodes {
		if _, ok := s.selected[n.ID]; !ok {
			continue
		}
		s.draftSeq++
		data := n.Data
		clone := &Node{
			ID:    draftID(s.draftSeq),
			IsNew: true,
			Data:  data,
			Position: models.CanvasPosition{
				X:        n.Position.X + duplicateOffset,
				Y:        n.Position.Y + duplicateOffset,
				Width:    n.Position.Width,
				Height:   n.Position.Height,
				Rotation: n.Position.Rotation,
			},
		}
		clone.Data.PlotNumber = n.Data.PlotNumber + duplicateMarker
		clones = append(clones, clone)
	}
	s.nodes = append(s.nodes, clones...)

	s.selected = map[string]struct{}{}
	for _, c := range clones {
		s.selected[c.ID] = struct{}{}
	}
	return clones
}

// SetSelection replaces the selection with the given node ids. Unknown ids
// are rejected so the caller cannot select stale nodes.
func (s *Session) SetSelection(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := s.index()
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return apperrors.NewValidation("ids", "unknown node id "+id)
		}
		next[id] = struct{}{}
	}
	s.selected = next
	return nil
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = map[string]struct{}{}
}

// UpdateField applies one field edit to every selected node. Edits on
// persisted nodes mark them dirty and record the changed column so the save
// payload carries it.
func (s *Session) UpdateField(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selected) == 0 {
		return apperrors.NewValidation("selection", "no nodes selected")
	}

	for _, n := range s.nodes {
		if _, ok := s.selected[n.ID]; !ok {
			continue
		}
		column, columnValue, err := applyField(n, key, value)
		if err != nil {
			return err
		}
		if !n.IsNew {
			s.dirty[n.ID] = struct{}{}
			if s.changed[n.ID] == nil {
				s.changed[n.ID] = map[string]interface{}{}
			}
			s.changed[n.ID][column] = columnValue
		}
	}
	return nil
}

// applyField mutates one node's data and returns the column name and value
// for the bulk-update payload.
func applyField(n *Node, key string, value interface{}) (string, interface{}, error) {
	switch key {
	case "plot_number":
		str := asString(value)
		if str == "" {
			return "", nil, apperrors.NewValidation(key, "plot_number cannot be empty")
		}
		n.Data.PlotNumber = str
		return key, str, nil
	case "block_id":
		if !n.IsNew {
			return "", nil, apperrors.NewValidation(key, "block_id is immutable for saved plots")
		}
		id, err := uuid.Parse(asString(value))
		if err != nil {
			return "", nil, apperrors.NewValidation(key, "block_id must be a valid uuid")
		}
		n.Data.BlockID = id
		return key, id, nil
	case "area", "price", "price_per_unit", "front_road_width":
		f, ok := asFloat(value)
		if !ok || f <= 0 {
			return "", nil, apperrors.NewValidation(key, key+" must be a positive number")
		}
		switch key {
		case "area":
			n.Data.Area = f
		case "price":
			n.Data.Price = f
		case "price_per_unit":
			n.Data.PricePerUnit = f
		case "front_road_width":
			n.Data.FrontRoadWidth = &f
		}
		return key, f, nil
	case "area_unit":
		unit := models.AreaUnit(asString(value))
		if !unit.Valid() {
			return "", nil, apperrors.NewValidation(key, "area_unit must be one of SQ_FT, SQ_METER, SQ_YARDS, ACRES")
		}
		n.Data.AreaUnit = unit
		return key, unit, nil
	case "facing":
		facing := models.Facing(asString(value))
		if !facing.Valid() {
			return "", nil, apperrors.NewValidation(key, "facing must be a compass direction")
		}
		n.Data.Facing = facing
		return key, facing, nil
	case "plot_type":
		pt := models.PlotType(asString(value))
		if !pt.Valid() {
			return "", nil, apperrors.NewValidation(key, "plot_type must be one of REGULAR, CORNER, ROAD")
		}
		n.Data.PlotType = pt
		return key, pt, nil
	case "status":
		if !n.IsNew {
			return "", nil, apperrors.NewValidation(key, "status changes for saved plots go through update-status")
		}
		status := models.PlotStatus(asString(value))
		if !status.Valid() {
			return "", nil, apperrors.NewValidation(key, "status must be one of available, booked, reserved, sold")
		}
		n.Data.Status = status
		return key, status, nil
	}
	return "", nil, apperrors.NewValidation(key, "unknown field")
}

// MoveNode records a drag/resize result. Persisted nodes become dirty; drafts
// are saved in full on creation, not diffed.
func (s *Session) MoveNode(id string, pos models.CanvasPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.index()[id]
	if !ok {
		return apperrors.NewNotFound("Canvas node")
	}
	node.Position = pos
	if !node.IsNew {
		s.dirty[id] = struct{}{}
	}
	return nil
}

// DeleteResult reports the outcome of DeleteSelected.
type DeleteResult struct {
	RemovedDrafts int      `json:"removed_drafts"`
	Deleted       int      `json:"deleted"`
	Failed        []string `json:"failed,omitempty"`
	Summary       string   `json:"summary"`
}

// DeleteSelected removes selected drafts locally and issues concurrent
// deletions for selected persisted plots. All deletions are awaited; one
// failure does not stop the others. The selection is cleared and the working
// set re-seeded afterwards.
func (s *Session) DeleteSelected(ctx context.Context, confirm bool) (DeleteResult, error) {
	if !confirm {
		return DeleteResult{}, apperrors.NewValidation("confirm", "deletion requires confirmation")
	}

	s.mu.Lock()
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return DeleteResult{}, apperrors.NewValidation("selection", "no nodes selected")
	}

	var keep []*Node
	var toDelete []uuid.UUID
	result := DeleteResult{}
	for _, n := range s.nodes {
		if _, ok := s.selected[n.ID]; !ok {
			keep = append(keep, n)
			continue
		}
		if n.IsNew {
			result.RemovedDrafts++
			delete(s.selected, n.ID)
			continue
		}
		toDelete = append(toDelete, n.PlotID)
		keep = append(keep, n)
	}
	s.nodes = keep
	s.mu.Unlock()

	if len(toDelete) > 0 {
		type outcome struct {
			id  uuid.UUID
			err error
		}
		outcomes := make(chan outcome, len(toDelete))
		for _, plotID := range toDelete {
			go func(id uuid.UUID) {
				_, err := s.store.DeletePlot(ctx, id)
				outcomes <- outcome{id: id, err: err}
			}(plotID)
		}
		for range toDelete {
			o := <-outcomes
			if o.err != nil {
				log.Warn().Str("plot_id", o.id.String()).Err(o.err).Msg("canvas delete failed")
				result.Failed = append(result.Failed, o.id.String())
				continue
			}
			result.Deleted++
		}
		sort.Strings(result.Failed)
	}

	s.mu.Lock()
	s.selected = map[string]struct{}{}
	s.mu.Unlock()

	if len(toDelete) > 0 {
		if err := s.Seed(ctx); err != nil {
			return result, err
		}
	}

	result.Summary = deleteSummary(result)
	return result, nil
}

func deleteSummary(r DeleteResult) string {
	summary := fmt.Sprintf("%d plot(s) deleted, %d draft(s) removed", r.Deleted, r.RemovedDrafts)
	if len(r.Failed) > 0 {
		summary += fmt.Sprintf(", %d deletion(s) failed", len(r.Failed))
	}
	return summary
}

// SaveResult reports the outcome of Save. The two bulk halves carry
// independent outcomes; one failing never rolls back the other.
type SaveResult struct {
	CreatedCount int    `json:"created_count"`
	MatchedCount int64  `json:"matched_count"`
	UpdatedCount int64  `json:"updated_count"`
	NoOp         bool   `json:"no_op"`
	CreateError  string `json:"create_error,omitempty"`
	UpdateError  string `json:"update_error,omitempty"`
	Summary      string `json:"summary"`
}

// Save partitions the working set into pending creates (drafts) and pending
// moves (dirty persisted nodes), dispatches one bulk call for each non-empty
// half concurrently, and re-seeds from the boundary when a half succeeds.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()

	var creates []plots.CreatePlotInput
	var patches []plots.PlotPatch
	sentDrafts := map[string]struct{}{}
	for _, n := range s.nodes {
		if n.IsNew {
			creates = append(creates, s.createInput(n))
			sentDrafts[n.ID] = struct{}{}
			continue
		}
		if _, isDirty := s.dirty[n.ID]; !isDirty {
			continue
		}
		pos := n.Position
		patch := plots.PlotPatch{PlotID: n.PlotID, CanvasPosition: &pos}
		if fields := s.changed[n.ID]; len(fields) > 0 {
			patch.Fields = make(map[string]interface{}, len(fields))
			for k, v := range fields {
				patch.Fields[k] = v
			}
		}
		patches = append(patches, patch)
	}

	if len(creates) == 0 && len(patches) == 0 {
		s.mu.Unlock()
		return SaveResult{NoOp: true, Summary: "nothing to save"}, nil
	}
	s.mu.Unlock()

	var (
		wg        sync.WaitGroup
		createErr error
		updateErr error
		created   int
		matched   int64
		modified  int64
	)
	if len(creates) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, createErr = s.store.BulkCreatePlots(ctx, s.projectID, creates)
		}()
	}
	if len(patches) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			matched, modified, updateErr = s.store.BulkUpdatePlots(ctx, s.projectID, patches)
		}()
	}
	wg.Wait()

	result := SaveResult{CreatedCount: created, MatchedCount: matched, UpdatedCount: modified}

	s.mu.Lock()
	if len(creates) > 0 && createErr == nil {
		// The transmitted drafts are persisted now; the re-seed brings them
		// back with real ids. A draft added while the call was in flight was
		// not part of the payload and stays on the canvas.
		var keep []*Node
		for _, n := range s.nodes {
			if _, wasSent := sentDrafts[n.ID]; !wasSent {
				keep = append(keep, n)
			}
		}
		s.nodes = keep
	}
	if len(patches) > 0 && updateErr == nil {
		for _, p := range patches {
			delete(s.dirty, p.PlotID.String())
			delete(s.changed, p.PlotID.String())
		}
	}
	anySucceeded := (len(creates) > 0 && createErr == nil) || (len(patches) > 0 && updateErr == nil)
	allSucceeded := createErr == nil && updateErr == nil
	if allSucceeded {
		s.selected = map[string]struct{}{}
	}
	s.mu.Unlock()

	if createErr != nil {
		log.Error().Str("project_id", s.projectID.String()).Err(createErr).Msg("canvas bulk create failed")
		result.CreateError = createErr.Error()
	}
	if updateErr != nil {
		log.Error().Str("project_id", s.projectID.String()).Err(updateErr).Msg("canvas bulk update failed")
		result.UpdateError = updateErr.Error()
	}

	if anySucceeded {
		if err := s.Seed(ctx); err != nil {
			return result, err
		}
	}

	result.Summary = saveSummary(len(creates), len(patches), result)
	return result, nil
}

func saveSummary(creates, moves int, r SaveResult) string {
	summary := fmt.Sprintf("%d plot(s) created, %d plot(s) updated", r.CreatedCount, r.MatchedCount)
	if r.CreateError != "" {
		summary += ", bulk create failed for " + strconv.Itoa(creates) + " draft(s)"
	}
	if r.UpdateError != "" {
		summary += ", bulk update failed for " + strconv.Itoa(moves) + " plot(s)"
	}
	return summary
}

func (s *Session) createInput(n *Node) plots.CreatePlotInput {
	pos := n.Position
	if pos.Width == 0 {
		pos.Width = defaultNodeWidth
	}
	if pos.Height == 0 {
		pos.Height = defaultNodeHeight
	}
	return plots.CreatePlotInput{
		ProjectID:      s.projectID,
		BlockID:        n.Data.BlockID,
		PlotNumber:     n.Data.PlotNumber,
		Area:           n.Data.Area,
		AreaUnit:       n.Data.AreaUnit,
		Dimensions:     n.Data.Dimensions,
		Facing:         n.Data.Facing,
		PlotType:       n.Data.PlotType,
		FrontRoadWidth: n.Data.FrontRoadWidth,
		Price:          n.Data.Price,
		PricePerUnit:   n.Data.PricePerUnit,
		Status:         n.Data.Status,
		CanvasPosition: &pos,
	}
}

// DiscardDrafts drops every draft node and all dirty markers; persisted nodes
// are untouched.
func (s *Session) DiscardDrafts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keep []*Node
	discarded := 0
	for _, n := range s.nodes {
		if n.IsNew {
			discarded++
			delete(s.selected, n.ID)
			continue
		}
		keep = append(keep, n)
	}
	s.nodes = keep
	s.dirty = map[string]struct{}{}
	s.changed = map[string]map[string]interface{}{}
	return discarded
}

// SessionState is a snapshot of the working set for the presentation layer.
type SessionState struct {
	ProjectID      uuid.UUID `json:"project_id"`
	Nodes          []Node    `json:"nodes"`
	SelectedIDs    []string  `json:"selected_ids"`
	DirtyIDs       []string  `json:"dirty_ids"`
	PendingCreates int       `json:"pending_creates"`
	PendingMoves   int       `json:"pending_moves"`
}

// State returns a copy of the current working set.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SessionState{
		ProjectID:   s.projectID,
		Nodes:       make([]Node, 0, len(s.nodes)),
		SelectedIDs: make([]string, 0, len(s.selected)),
		DirtyIDs:    make([]string, 0, len(s.dirty)),
	}
	for _, n := range s.nodes {
		state.Nodes = append(state.Nodes, *n)
		if n.IsNew {
			state.PendingCreates++
		} else if _, ok := s.dirty[n.ID]; ok {
			state.PendingMoves++
		}
	}
	for id := range s.selected {
		state.SelectedIDs = append(state.SelectedIDs, id)
	}
	for id := range s.dirty {
		state.DirtyIDs = append(state.DirtyIDs, id)
	}
	sort.Strings(state.SelectedIDs)
	sort.Strings(state.DirtyIDs)
	return state
}

func (s *Session) index() map[string]*Node {
	byID := make(map[string]*Node, len(s.nodes))
	for _, n := range s.nodes {
		byID[n.ID] = n
	}
	return byID
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v != nil {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
