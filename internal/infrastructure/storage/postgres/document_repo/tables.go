package document_repo

import (
	"inventario/internal/domain/documents"
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/domain/documents/order"
	"inventario/internal/domain/documents/quotation"
	"inventario/internal/domain/documents/reception"
	"inventario/internal/domain/documents/returns"
	"inventario/internal/infrastructure/storage/postgres"
)

// Only dispatch lines carry brand and model.
var plainLines = []string{"brand", "model"}

var (
	OrdersTable = Table{Name: "doc_orders", Lines: "doc_order_items", LineExclude: plainLines}

	QuotationsTable = Table{Name: "doc_quotations", Lines: "doc_quotation_items", LineExclude: plainLines}

	DispatchNotesTable = Table{Name: "doc_dispatch_notes", Lines: "doc_dispatch_note_items"}

	ReceptionNotesTable = Table{Name: "doc_reception_notes", Lines: "doc_reception_note_items", LineExclude: plainLines}

	ReturnNotesTable = Table{Name: "doc_return_notes", Lines: "doc_return_note_items", LineExclude: plainLines}
)

// NewOrderRepo creates the order repository.
func NewOrderRepo(txManager *postgres.TxManager) *Repo[*order.Order] {
	return NewRepo(txManager, OrdersTable, postgres.ExtractDBColumns[order.Order](), order.New)
}

// NewQuotationRepo creates the quotation repository.
func NewQuotationRepo(txManager *postgres.TxManager) *Repo[*quotation.Quotation] {
	return NewRepo(txManager, QuotationsTable, postgres.ExtractDBColumns[quotation.Quotation](), quotation.New)
}

// NewDispatchNoteRepo creates the dispatch note repository.
func NewDispatchNoteRepo(txManager *postgres.TxManager) *Repo[*dispatch.DispatchNote] {
	return NewRepo(txManager, DispatchNotesTable, postgres.ExtractDBColumns[dispatch.DispatchNote](), dispatch.New)
}

// NewReceptionNoteRepo creates the reception note repository.
func NewReceptionNoteRepo(txManager *postgres.TxManager) *Repo[*reception.ReceptionNote] {
	return NewRepo(txManager, ReceptionNotesTable, postgres.ExtractDBColumns[reception.ReceptionNote](), reception.New)
}

// NewReturnNoteRepo creates the return note repository.
func NewReturnNoteRepo(txManager *postgres.TxManager) *Repo[*returns.ReturnNote] {
	return NewRepo(txManager, ReturnNotesTable, postgres.ExtractDBColumns[returns.ReturnNote](), returns.New)
}

var (
	_ documents.Repository[*order.Order]             = (*Repo[*order.Order])(nil)
	_ documents.Repository[*quotation.Quotation]     = (*Repo[*quotation.Quotation])(nil)
	_ documents.Repository[*dispatch.DispatchNote]   = (*Repo[*dispatch.DispatchNote])(nil)
	_ documents.Repository[*reception.ReceptionNote] = (*Repo[*reception.ReceptionNote])(nil)
	_ documents.Repository[*returns.ReturnNote]      = (*Repo[*returns.ReturnNote])(nil)
)
