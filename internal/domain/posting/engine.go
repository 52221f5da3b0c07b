// Package posting orchestrates document posting: regenerating ledger
// entries for a document inside a single transaction so that re-posting
// is idempotent.
package posting

import (
	"context"

	"takoyaki/internal/core/apperror"
	"takoyaki/internal/core/entity"
	"takoyaki/internal/core/id"
	"takoyaki/internal/core/tx"
	"takoyaki/pkg/logger"
)

// Document is a postable document as seen by the engine.
type Document interface {
	GetID() id.ID
	GetRefType() entity.RefType
	GetPostedVersion() int
	IsPosted() bool
	MarkPosted()
	MarkUnposted()
	CanPost(ctx context.Context) error

	// GenerateEntries produces the ledger entries this document stands for.
	// Called after MarkPosted, so entries must carry the new posted version.
	GenerateEntries(ctx context.Context) ([]entity.LedgerEntry, error)
}

// Register is the slice of the ledger the engine writes through.
type Register interface {
	Append(ctx context.Context, entries []entity.LedgerEntry) error
	DeleteByReference(ctx context.Context, refType entity.RefType, refID id.ID, beforeVersion int) (int64, error)
}

// AuditSink records posting events. Implementations may compress and
// persist the posted entries for later inspection.
type AuditSink interface {
	RecordPosting(ctx context.Context, refType entity.RefType, refID id.ID, version int, entries []entity.LedgerEntry) error
}

// Engine posts and unposts documents against the ledger register.
type Engine struct {
	register  Register
	txManager tx.Manager
	audit     AuditSink // optional
}

// NewEngine creates a posting engine. audit may be nil.
func NewEngine(register Register, txManager tx.Manager, audit AuditSink) *Engine {
	return &Engine{
		register:  register,
		txManager: txManager,
		audit:     audit,
	}
}

// Post regenerates the document's ledger entries and saves the document,
// all in one transaction. Previous entries of the same document are
// removed by reference, so posting an already posted document replaces
// its footprint instead of duplicating it.
//
// saveDoc persists the document itself and is responsible for the
// optimistic-lock check on its version.
func (e *Engine) Post(ctx context.Context, doc Document, saveDoc func(ctx context.Context) error) error {
	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	return e.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		doc.MarkPosted()
		newVersion := doc.GetPostedVersion()

		removed, err := e.register.DeleteByReference(txCtx, doc.GetRefType(), doc.GetID(), newVersion)
		if err != nil {
			return err
		}

		entries, err := doc.GenerateEntries(txCtx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "document produces no ledger entries")
		}

		if err := e.register.Append(txCtx, entries); err != nil {
			return err
		}

		if err := saveDoc(txCtx); err != nil {
			return err
		}

		if e.audit != nil {
			if err := e.audit.RecordPosting(txCtx, doc.GetRefType(), doc.GetID(), newVersion, entries); err != nil {
				// Audit is best-effort, the posting itself stands.
				logger.Warn(txCtx, "posting audit failed",
					"ref_type", doc.GetRefType(), "ref_id", doc.GetID(), "error", err)
			}
		}

		logger.Info(txCtx, "document posted",
			"ref_type", doc.GetRefType(),
			"ref_id", doc.GetID(),
			"version", newVersion,
			"entries", len(entries),
			"replaced", removed,
		)
		return nil
	})
}

// Unpost removes the document's ledger footprint and saves the document
// as unposted.
func (e *Engine) Unpost(ctx context.Context, doc Document, saveDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "document is not posted")
	}

	return e.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		doc.MarkUnposted()

		// beforeVersion above any stamped version removes everything.
		removed, err := e.register.DeleteByReference(txCtx, doc.GetRefType(), doc.GetID(), doc.GetPostedVersion()+1)
		if err != nil {
			return err
		}

		if err := saveDoc(txCtx); err != nil {
			return err
		}

		logger.Info(txCtx, "document unposted",
			"ref_type", doc.GetRefType(),
			"ref_id", doc.GetID(),
			"removed", removed,
		)
		return nil
	})
}
