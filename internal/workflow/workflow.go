// Package workflow sequences the hold and consume screens: pick demand lines,
// load stock for them, edit proposed quantities and confirm a batch.
//
// Screens move SELECT -> VALIDATE -> CONFIRMED with a back edge from VALIDATE
// to SELECT. Only one remote call may be in flight per workflow; any mutation
// attempted while one is pending fails with a conflict error.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OmkarVetal12/synlawn/internal/drafts"
	"github.com/OmkarVetal12/synlawn/internal/inventory"
	"github.com/OmkarVetal12/synlawn/internal/ledger"
	"github.com/OmkarVetal12/synlawn/internal/selection"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
	"github.com/OmkarVetal12/synlawn/pkg/metrics"
	"github.com/shopspring/decimal"
)

const (
	EmptyHoldMessage    = "Please enter at least one valid hold quantity."
	EmptyConsumeMessage = "Enter quantity to consume"
	NoSelectionMessage  = "Select at least one line item."
	LoadFailedMessage   = "Failed to load inventory"
	SubmitFailedMessage = "Failed to submit inventory batch"
	BusyMessage         = "workflow busy"
)

// Remote call labels used for metrics.
const (
	callFetchDemand   = "fetch_demand"
	callStockCheck    = "stock_check"
	callSubmitHold    = "submit_hold"
	callSubmitConsume = "submit_consume"
)

// Config describes one workflow instance.
type Config struct {
	ID            string
	Mode          enums.WorkflowMode
	ParentID      string
	Collaborators Collaborators
	Drafts        drafts.Store
	Logger        *logger.Logger
	Metrics       *metrics.WorkflowMetrics
	// RemoteTimeout bounds each remote call. Zero leaves the caller's context as is.
	RemoteTimeout time.Duration
}

// Filter is the visible-row predicate.
type Filter struct {
	Product  string `json:"product"`
	Location string `json:"location"`
}

// State is a point-in-time view of a workflow.
type State struct {
	ID          string                  `json:"id"`
	Mode        enums.WorkflowMode      `json:"mode"`
	ParentID    string                  `json:"parent_id"`
	Screen      enums.WorkflowScreen    `json:"screen"`
	DemandLines []DemandLine            `json:"demand_lines"`
	Selected    []string                `json:"selected"`
	RowsLoaded  bool                    `json:"rows_loaded"`
	LoadFailed  bool                    `json:"load_failed"`
	RowCount    int                     `json:"row_count"`
	RowsVersion uint64                  `json:"rows_version"`
	DraftCount  int                     `json:"draft_count"`
	Filter      Filter                  `json:"filter"`
	Errors      []ledger.Entry          `json:"errors"`
	Validation  ledger.ValidationResult `json:"validation"`
	Busy        bool                    `json:"busy"`
}

// Workflow is one user's hold or consume session. Methods are safe for
// concurrent use.
type Workflow struct {
	id       string
	mode     enums.WorkflowMode
	parentID string
	collab   Collaborators
	store    drafts.Store
	logg     *logger.Logger
	metrics  *metrics.WorkflowMetrics
	timeout  time.Duration

	mu          sync.Mutex
	busy        bool
	screen      enums.WorkflowScreen
	demandLines []DemandLine
	selected    *selection.Set
	rows        *inventory.Store
	reconciler  *drafts.Reconciler
	errs        *ledger.Ledger
	filter      Filter
	loadFailed  bool
}

// New validates cfg and returns a workflow on the SELECT screen.
func New(cfg Config) (*Workflow, error) {
	if !cfg.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid workflow mode")
	}
	if cfg.ParentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent id is required")
	}
	if cfg.Collaborators.Demand == nil || cfg.Collaborators.Inventory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "workflow collaborators are not configured")
	}
	if cfg.Mode == enums.WorkflowModeHold && cfg.Collaborators.Hold == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "hold submitter is not configured")
	}
	if cfg.Mode == enums.WorkflowModeConsume && cfg.Collaborators.Consume == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "consume submitter is not configured")
	}
	if cfg.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "workflow logger is required")
	}
	store := cfg.Drafts
	if store == nil {
		store = drafts.NewMemoryStore()
	}
	return &Workflow{
		id:         cfg.ID,
		mode:       cfg.Mode,
		parentID:   cfg.ParentID,
		collab:     cfg.Collaborators,
		store:      store,
		logg:       cfg.Logger,
		metrics:    cfg.Metrics,
		timeout:    cfg.RemoteTimeout,
		screen:     enums.ScreenSelect,
		selected:   selection.New(),
		rows:       inventory.NewStore(),
		reconciler: drafts.NewReconciler(),
		errs:       ledger.New(),
	}, nil
}

func (w *Workflow) ID() string { return w.id }

func (w *Workflow) Mode() enums.WorkflowMode { return w.mode }

func (w *Workflow) ParentID() string { return w.parentID }

func errBusy() error {
	return pkgerrors.New(pkgerrors.CodeConflict, BusyMessage)
}

func errScreen(action string, screen enums.WorkflowScreen) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, action+" is not allowed on the "+screen.String()+" screen")
}

func (w *Workflow) draftScope() string {
	return drafts.Scope(string(w.mode), w.parentID)
}

func (w *Workflow) logContext(ctx context.Context) context.Context {
	ctx = w.logg.WithWorkflowID(ctx, w.id)
	ctx = w.logg.WithParentID(ctx, w.parentID)
	return w.logg.WithField(ctx, "mode", string(w.mode))
}

// remote runs fn with the configured timeout and records its duration.
func (w *Workflow) remote(ctx context.Context, call string, fn func(context.Context) error) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	started := time.Now()
	err := fn(ctx)
	w.metrics.ObserveRemoteCall(call, time.Since(started), err)
	return err
}

func (w *Workflow) setScreen(screen enums.WorkflowScreen) {
	w.screen = screen
	w.metrics.IncTransition(string(w.mode), screen.String())
}

// Start loads the parent's demand lines and any persisted drafts. It may be
// called again from SELECT to refresh the demand lines.
func (w *Workflow) Start(ctx context.Context) error {
	ctx = w.logContext(ctx)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return errBusy()
	}
	if w.screen != enums.ScreenSelect {
		screen := w.screen
		w.mu.Unlock()
		return errScreen("start", screen)
	}
	w.busy = true
	w.mu.Unlock()

	var lines []DemandLine
	err := w.remote(ctx, callFetchDemand, func(ctx context.Context) error {
		var fetchErr error
		lines, fetchErr = w.collab.Demand.FetchDemandLines(ctx, w.parentID)
		return fetchErr
	})
	var saved map[string]decimal.Decimal
	var loadErr error
	if err == nil {
		saved, loadErr = w.store.Load(ctx, w.draftScope())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if err != nil {
		w.logg.Error(ctx, "failed to fetch demand lines", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load demand lines")
	}
	w.demandLines = append([]DemandLine(nil), lines...)
	if loadErr != nil {
		w.logg.Warn(w.logg.WithField(ctx, "error", loadErr.Error()), "failed to restore drafts")
	} else if len(saved) > 0 {
		for id, qty := range saved {
			if _, ok := w.reconciler.Get(id); !ok {
				w.reconciler.RecordEdit(id, qty)
			}
		}
	}
	w.logg.Info(w.logg.WithField(ctx, "demand_lines", len(w.demandLines)), "workflow started")
	return nil
}

// Toggle selects or deselects a demand line on the SELECT screen.
func (w *Workflow) Toggle(demandLineID string, selected bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return errBusy()
	}
	if w.screen != enums.ScreenSelect {
		return errScreen("selection", w.screen)
	}
	if selected && !w.hasDemandLine(demandLineID) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "demand line not found")
	}
	w.selected.Toggle(demandLineID, selected)
	return nil
}

func (w *Workflow) hasDemandLine(id string) bool {
	for _, line := range w.demandLines {
		if line.ID == id {
			return true
		}
	}
	return false
}

// Next checks stock for the selected demand lines and moves to VALIDATE once
// the rows are loaded and reconciled with drafts. A failed check leaves the
// workflow on SELECT with no rows and LoadFailed set.
func (w *Workflow) Next(ctx context.Context) error {
	ctx = w.logContext(ctx)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return errBusy()
	}
	if w.screen != enums.ScreenSelect {
		screen := w.screen
		w.mu.Unlock()
		return errScreen("next", screen)
	}
	if w.selected.IsEmpty() {
		w.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, NoSelectionMessage)
	}
	ids := w.selected.IDs()
	w.busy = true
	w.mu.Unlock()

	var fetched []inventory.Row
	err := w.remote(ctx, callStockCheck, func(ctx context.Context) error {
		var checkErr error
		fetched, checkErr = w.collab.Inventory.CheckInventory(ctx, ids)
		return checkErr
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if err != nil {
		w.rows.Reset()
		w.loadFailed = true
		w.setScreen(enums.ScreenSelect)
		w.logg.Error(ctx, "stock check failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, LoadFailedMessage)
	}

	incoming := make([]inventory.Row, len(fetched))
	for i, row := range fetched {
		row.ProposedQuantity = decimal.Zero
		incoming[i] = row
	}
	merged, rowErrs := w.reconciler.ApplyDraftsTo(incoming)
	w.rows.Replace(merged)

	present := make([]string, 0, len(merged))
	for _, row := range merged {
		present = append(present, row.ProductItemID)
	}
	w.errs.Retain(present)
	w.errs.Merge(rowErrs)

	w.loadFailed = false
	w.setScreen(enums.ScreenValidate)
	w.logg.Info(w.logg.WithFields(ctx, map[string]any{
		"rows":         w.rows.Len(),
		"draft_errors": len(rowErrs),
	}), "inventory loaded")
	return nil
}

// Back discards the loaded rows and returns to SELECT. Drafts and the error
// ledger are kept so re-entering VALIDATE restores prior edits.
func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return errBusy()
	}
	if w.screen != enums.ScreenValidate {
		return errScreen("back", w.screen)
	}
	w.rows.Reset()
	w.loadFailed = false
	w.setScreen(enums.ScreenSelect)
	return nil
}

// OnQuantityInput clamps rawInput against the row's available quantity,
// records the clamped value as a draft and clears the row's error.
func (w *Workflow) OnQuantityInput(ctx context.Context, productItemID, rawInput string) (inventory.Row, error) {
	ctx = w.logContext(ctx)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return inventory.Row{}, errBusy()
	}
	if w.screen != enums.ScreenValidate {
		screen := w.screen
		w.mu.Unlock()
		return inventory.Row{}, errScreen("quantity edit", screen)
	}
	row, ok := w.rows.SetProposedQuantity(productItemID, rawInput)
	if !ok {
		w.mu.Unlock()
		return inventory.Row{}, pkgerrors.New(pkgerrors.CodeNotFound, "inventory row not found")
	}
	w.reconciler.RecordEdit(productItemID, row.ProposedQuantity)
	w.errs.Clear(productItemID)
	w.mu.Unlock()

	w.persistDrafts(ctx, map[string]decimal.Decimal{productItemID: row.ProposedQuantity})
	return row, nil
}

// persistDrafts merges this workflow's changes into the shared scope. It must
// be called without w.mu held. Failures are logged; the in-memory drafts
// remain authoritative for this workflow.
func (w *Workflow) persistDrafts(ctx context.Context, upserts map[string]decimal.Decimal, removed ...string) {
	if err := w.store.Merge(ctx, w.draftScope(), upserts, removed...); err != nil {
		w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "failed to persist drafts")
	}
}

// FlushDrafts writes the current draft set to the store and reports failures.
func (w *Workflow) FlushDrafts(ctx context.Context) error {
	w.mu.Lock()
	snapshot := w.reconciler.Snapshot()
	w.mu.Unlock()
	if len(snapshot) == 0 {
		return nil
	}
	if err := w.store.Merge(ctx, w.draftScope(), snapshot); err != nil {
		return fmt.Errorf("flush drafts for workflow %s: %w", w.id, err)
	}
	return nil
}

// OnFilterChange updates the visible-row predicate. Underlying rows are not
// touched.
func (w *Workflow) OnFilterChange(productText, locationText string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter = Filter{Product: productText, Location: locationText}
}

// VisibleRows returns the rows matching the current filter.
func (w *Workflow) VisibleRows() []inventory.Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows.Filter(w.filter.Product, w.filter.Location)
}

// ErrorLedgerSummary lists active row errors ordered by product item id.
func (w *Workflow) ErrorLedgerSummary() []ledger.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs.Entries()
}

// Validate reports whether the workflow may proceed.
func (w *Workflow) Validate() ledger.ValidationResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs.AsValidationResult()
}

func (w *Workflow) emptyBatchMessage() string {
	if w.mode == enums.WorkflowModeConsume {
		return EmptyConsumeMessage
	}
	return EmptyHoldMessage
}

// batchIDs resolves the quote and work order ids a batch is submitted under.
func (w *Workflow) batchIDs() (quoteID, workOrderID string) {
	if w.mode == enums.WorkflowModeHold {
		return w.parentID, ""
	}
	if len(w.demandLines) > 0 {
		quoteID = w.demandLines[0].QuoteID
	}
	return quoteID, w.parentID
}

// Confirm builds a batch from every loaded row with a positive proposed
// quantity and submits it. Nothing is submitted when the batch is empty or
// the error ledger is not. A failed submission leaves all state untouched.
func (w *Workflow) Confirm(ctx context.Context) (*Batch, error) {
	ctx = w.logContext(ctx)
	mode := string(w.mode)

	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return nil, errBusy()
	}
	if w.screen != enums.ScreenValidate {
		screen := w.screen
		w.mu.Unlock()
		return nil, errScreen("confirm", screen)
	}
	quoteID, workOrderID := w.batchIDs()
	batch := buildBatch(w.mode, quoteID, workOrderID, w.rows.Rows())
	if batch.IsEmpty() {
		msg := w.emptyBatchMessage()
		w.mu.Unlock()
		w.metrics.IncConfirm(mode, metrics.OutcomeEmptyBatch)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msg)
	}
	if !w.errs.IsEmpty() {
		entries := w.errs.Entries()
		w.mu.Unlock()
		w.metrics.IncConfirm(mode, metrics.OutcomeBlocked)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, ledger.InvalidMessage).WithDetails(entries)
	}
	w.busy = true
	w.mu.Unlock()

	err := w.submit(ctx, batch)

	w.mu.Lock()
	w.busy = false
	if err != nil {
		w.mu.Unlock()
		w.metrics.IncConfirm(mode, metrics.OutcomeFailed)
		w.logg.Error(ctx, "batch submission failed", err)
		if passThroughSubmitError(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, SubmitFailedMessage)
	}

	submitted := batch.ProductItemIDs()
	w.reconciler.Clear(submitted...)
	for _, id := range submitted {
		w.errs.Clear(id)
	}
	w.setScreen(enums.ScreenConfirmed)
	w.mu.Unlock()

	w.persistDrafts(ctx, nil, submitted...)
	w.metrics.IncConfirm(mode, metrics.OutcomeSubmitted)
	w.logg.Info(w.logg.WithField(ctx, "batch_size", batch.Len()), "inventory batch submitted")
	return batch, nil
}

// passThroughSubmitError reports whether a submitter error already carries a
// caller-facing code.
func passThroughSubmitError(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeConflict, pkgerrors.CodeStateConflict:
		return true
	}
	return false
}

func (w *Workflow) submit(ctx context.Context, batch *Batch) error {
	if w.mode == enums.WorkflowModeConsume {
		return w.remote(ctx, callSubmitConsume, func(ctx context.Context) error {
			return w.collab.Consume.SubmitConsumeBatch(ctx, batch.Consume())
		})
	}
	return w.remote(ctx, callSubmitHold, func(ctx context.Context) error {
		return w.collab.Hold.SubmitHoldBatch(ctx, batch.Hold())
	})
}

// State returns a snapshot of the workflow.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		ID:          w.id,
		Mode:        w.mode,
		ParentID:    w.parentID,
		Screen:      w.screen,
		DemandLines: append([]DemandLine(nil), w.demandLines...),
		Selected:    w.selected.IDs(),
		RowsLoaded:  w.rows.Loaded(),
		LoadFailed:  w.loadFailed,
		RowCount:    w.rows.Len(),
		RowsVersion: w.rows.Version(),
		DraftCount:  w.reconciler.Len(),
		Filter:      w.filter,
		Errors:      w.errs.Entries(),
		Validation:  w.errs.AsValidationResult(),
		Busy:        w.busy,
	}
}

// Busy reports whether a remote call is in flight.
func (w *Workflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// Screen returns the current screen.
func (w *Workflow) Screen() enums.WorkflowScreen {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.screen
}
