package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"

	"office-web-server/internal/domain"
)

// supabaseRow is the shape of a mirrored document in the Supabase table.
type supabaseRow struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updated_at"`
}

// tableUpserter is the slice of the Supabase client the mirror needs.
type tableUpserter interface {
	Upsert(table string, row interface{}, onConflict string) error
}

type postgrestUpserter struct {
	client *supabase.Client
}

func (u *postgrestUpserter) Upsert(table string, row interface{}, onConflict string) error {
	_, _, err := u.client.From(table).Insert(row, true, onConflict, "minimal", "").Execute()
	return err
}

// SupabaseMirror copies saved documents into a Supabase table keyed by filename.
type SupabaseMirror struct {
	table  string
	db     tableUpserter
	logger domain.Logger
	now    func() time.Time
}

// NewSupabaseMirror connects to Supabase with the anon key from config
func NewSupabaseMirror(config domain.Config, logger domain.Logger) (*SupabaseMirror, error) {
	supabaseURL := config.GetSupabaseURL()
	supabaseKey := config.GetSupabaseKey()

	if supabaseURL == "" || supabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	logger.Info("Supabase mirror initialized", "url", supabaseURL, "table", config.GetSupabaseTable())
	return newSupabaseMirror(config.GetSupabaseTable(), &postgrestUpserter{client: client}, logger), nil
}

func newSupabaseMirror(table string, db tableUpserter, logger domain.Logger) *SupabaseMirror {
	return &SupabaseMirror{
		table:  table,
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (m *SupabaseMirror) Name() string {
	return "supabase"
}

// Put upserts the document row
func (m *SupabaseMirror) Put(ctx context.Context, doc *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := supabaseRow{
		Filename:  doc.Filename,
		Content:   doc.Content,
		UpdatedAt: m.now().UTC().Format(time.RFC3339),
	}
	if err := m.db.Upsert(m.table, row, "filename"); err != nil {
		return fmt.Errorf("supabase upsert %s: %w", doc.Filename, err)
	}
	return nil
}
