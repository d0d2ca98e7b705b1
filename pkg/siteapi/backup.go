package siteapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	BackupTypeCode     = "code"
	BackupTypeFiles    = "files"
	BackupTypeDatabase = "database"

	// DefaultBackupTTL is applied when the server omits a ttl, 365 days.
	DefaultBackupTTL = 31536000

	backupBucket       = "pantheon-backups"
	oneboxBackupBucket = "onebox-pantheon-backups"

	initiatorManual    = "manual"
	initiatorAutomated = "automated"
)

// restoreWorkflows maps a backup type to the workflow restoring it.
var restoreWorkflows = map[string]string{
	BackupTypeCode:     "restore_code",
	BackupTypeFiles:    "restore_files",
	BackupTypeDatabase: "restore_database",
}

// Backup is one snapshot record from an environment's backup catalog.
type Backup struct {
	ID         string `json:"id"`
	Folder     string `json:"folder"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Timestamp  int64  `json:"timestamp"`
	FinishTime int64  `json:"finish_time"`
	TTL        int64  `json:"ttl"`
	ArchiveRef string `json:"archive_url,omitempty"`

	// Segments parsed from ID.
	ScheduledFor string `json:"-"`
	ArchiveType  string `json:"-"`
	Type         string `json:"-"`

	client *Client
}

// NewBackup constructs a backup record from one server supplied attribute
// set. It fails with ErrMalformedBackupID when the id does not follow the
// catalog naming scheme.
func NewBackup(client *Client, attrs json.RawMessage) (*Backup, error) {
	var b Backup
	if err := json.Unmarshal(attrs, &b); err != nil {
		return nil, err
	}
	if err := b.parseID(); err != nil {
		return nil, err
	}
	if b.TTL == 0 {
		b.TTL = DefaultBackupTTL
	}
	b.client = client
	return &b, nil
}

// parseID splits ID into its <scheduled>_<archive>_<type> segments.
func (b *Backup) parseID() error {
	parts := strings.Split(b.ID, "_")
	if len(parts) != 3 {
		return fmt.Errorf("%q: %w", b.ID, ErrMalformedBackupID)
	}
	b.ScheduledFor, b.ArchiveType, b.Type = parts[0], parts[1], parts[2]
	return nil
}

// IsFinished reports whether the archive has actually been produced. A
// record with no size, or with neither a finish time nor a start time, is
// still pending.
func (b *Backup) IsFinished() bool {
	return b.Size > 0 && (b.FinishTime != 0 || b.Timestamp != 0)
}

// CompletionDate is the completion time of a backup, or pending when the
// backup has not finished yet.
type CompletionDate struct {
	Pending bool
	Epoch   int64
}

func (d CompletionDate) String() string {
	if d.Pending {
		return "Pending"
	}
	return fmt.Sprintf("%d", d.Epoch)
}

// Date returns the completion time of the backup. The finish time wins over
// the start timestamp when both are present.
func (b *Backup) Date() CompletionDate {
	if !b.IsFinished() {
		return CompletionDate{Pending: true}
	}
	if b.FinishTime != 0 {
		return CompletionDate{Epoch: b.FinishTime}
	}
	return CompletionDate{Epoch: b.Timestamp}
}

// Expiry returns the epoch at which the archive expires, ttl seconds after
// completion. The second return value is false while the backup is pending.
func (b *Backup) Expiry() (int64, bool) {
	d := b.Date()
	if d.Pending {
		return 0, false
	}
	return d.Epoch + b.TTL, true
}

// Initiator classifies the backup as manual or automated from the folder
// naming convention: an "automated" suffix after the last underscore marks a
// scheduled backup, anything else is treated as manual.
func (b *Backup) Initiator() string {
	idx := strings.LastIndex(b.Folder, "_")
	if idx < 0 {
		return initiatorManual
	}
	if b.Folder[idx+1:] == initiatorAutomated {
		return initiatorAutomated
	}
	return initiatorManual
}

// SizeMB renders the archive size in megabytes. Empty backups render as a
// bare "0"; any non-empty backup displays at least "0.1MB" so a produced
// archive never reads as occupying zero space.
func (b *Backup) SizeMB() string {
	if b.Size <= 0 {
		return "0"
	}
	mb := float64(b.Size) / (1 << 20)
	if mb > 0.1 {
		return fmt.Sprintf("%.1fMB", mb)
	}
	return "0.1MB"
}

// Bucket returns the storage bucket holding the archive, switched by the
// onebox deployment marker in the client's configured host.
func (b *Backup) Bucket() string {
	if b.client.IsOnebox() {
		return oneboxBackupBucket
	}
	return backupBucket
}

func (c *Client) backupCatalogPath() string {
	return fmt.Sprintf("/sites/%s/environments/%s/backups/catalog", c.SiteID, c.Environment)
}

func (c *Client) archiveURLPath() string {
	return fmt.Sprintf("/sites/%s/environments/%s/backups/archive-url", c.SiteID, c.Environment)
}

type archiveURLResponse struct {
	URL string `json:"url"`
}

// ArchiveURL returns the signed download url for the archive, resolving it
// from the server on first use. The resolved url is cached for the lifetime
// of the record; later calls return it without network I/O. Records are not
// safe for concurrent use, a record belongs to one caller at a time.
//
// The resolver endpoint only answers POST requests carrying a form field
// requesting GET semantics, a quirk of the signing service.
func (b *Backup) ArchiveURL(ctx context.Context) (string, error) {
	if b.ArchiveRef != "" {
		return b.ArchiveRef, nil
	}

	form := url.Values{}
	form.Set("method", "get")
	form.Set("path", b.Folder)
	form.Set("element", b.Type)

	req, err := b.client.NewFormRequest(b.client.archiveURLPath(), form)
	if err != nil {
		return "", err
	}

	resp, err := b.client.Do(req.WithContext(ctx))
	if err != nil {
		return "", err
	}
	if err := checkResponse(resp); err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var aur archiveURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&aur); err != nil {
		return "", err
	}

	b.ArchiveRef = aur.URL
	return b.ArchiveRef, nil
}

// Restore starts the restore workflow matching the backup's type against the
// record's environment and returns the workflow handle for tracking. Backups
// whose type has no restore workflow fail with ErrUnsupportedBackupType
// before any request is made.
func (b *Backup) Restore(ctx context.Context) (*Workflow, error) {
	workflow, ok := restoreWorkflows[b.Type]
	if !ok {
		return nil, ErrUnsupportedBackupType
	}

	// The archive object key is built from the base snapshot id, the backup
	// id minus its type suffix.
	baseID := strings.TrimSuffix(b.ID, "_"+b.Type)
	params := WorkflowParams{
		Key:    strings.Join([]string{b.client.SiteID, b.client.Environment, baseID, b.Filename}, "/"),
		Bucket: b.Bucket(),
	}

	b.client.logger.Info("dispatching restore workflow",
		zap.String("workflow", workflow),
		zap.String("backup_id", b.ID),
		zap.String("bucket", params.Bucket),
	)
	return b.client.CreateWorkflow(ctx, workflow, params)
}

// BackupDetail is the display-ready projection of a backup record. Building
// it never triggers url resolution; Url carries whatever is cached.
type BackupDetail struct {
	File      string `json:"file"`
	Size      string `json:"size"`
	Date      string `json:"date"`
	Expiry    int64  `json:"expiry,omitempty"`
	Initiator string `json:"initiator"`
	Url       string `json:"url,omitempty"`
	Type      string `json:"type"`
}

// Detail serializes the record for display.
func (b *Backup) Detail() BackupDetail {
	d := BackupDetail{
		File:      b.Filename,
		Size:      b.SizeMB(),
		Date:      b.Date().String(),
		Initiator: b.Initiator(),
		Url:       b.ArchiveRef,
		Type:      b.Type,
	}
	if expiry, ok := b.Expiry(); ok {
		d.Expiry = expiry
	}
	return d
}

// ListBackups retrieves the backup catalog of the client's environment,
// newest first.
func (c *Client) ListBackups(ctx context.Context) ([]*Backup, error) {
	req, err := c.NewRequest(http.MethodGet, c.backupCatalogPath(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The catalog arrives as an id -> attributes map.
	var catalog map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, err
	}

	backups := make([]*Backup, 0, len(catalog))
	for id, attrs := range catalog {
		b, err := NewBackup(c, attrs)
		if err != nil {
			c.logger.Warn("skipping catalog entry", zap.String("id", id), zap.Error(err))
			continue
		}
		backups = append(backups, b)
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ScheduledFor > backups[j].ScheduledFor
	})
	return backups, nil
}

// GetBackup retrieves a single backup record by id.
func (c *Client) GetBackup(ctx context.Context, id string) (*Backup, error) {
	backups, err := c.ListBackups(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range backups {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, &ErrorResponse{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("no backup with id %s", id)}
}
