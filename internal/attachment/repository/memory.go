package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/attachment"
)

// MemoryRepo is a simple in-memory repository used for local development
// and unit tests.
type MemoryRepo struct {
	mu          sync.RWMutex
	attachments map[int64]*attachment.Attachment
	revisions   map[int64]*attachment.Revision
	links       []*attachment.DocumentAttachment
	attSeq      int64
	revSeq      int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		attachments: make(map[int64]*attachment.Attachment),
		revisions:   make(map[int64]*attachment.Revision),
	}
}

func (m *MemoryRepo) CreateAttachment(ctx context.Context, a *attachment.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.MindtouchAttachmentID != nil {
		for _, other := range m.attachments {
			if other.MindtouchAttachmentID != nil && *other.MindtouchAttachmentID == *a.MindtouchAttachmentID {
				return ErrDuplicateLegacyID
			}
		}
	}
	m.attSeq++
	a.ID = m.attSeq
	cp := *a
	m.attachments[a.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id int64) (*attachment.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attachments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryRepo) GetByMindtouchID(ctx context.Context, legacyID int64) (*attachment.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attachments {
		if a.MindtouchAttachmentID != nil && *a.MindtouchAttachmentID == legacyID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) DeleteAttachment(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attachments[id]; !ok {
		return ErrNotFound
	}
	delete(m.attachments, id)
	for rid, r := range m.revisions {
		if r.AttachmentID == id {
			delete(m.revisions, rid)
		}
	}
	kept := m.links[:0]
	for _, l := range m.links {
		if l.AttachmentID != id {
			kept = append(kept, l)
		}
	}
	m.links = kept
	return nil
}

func (m *MemoryRepo) SaveRevision(ctx context.Context, rev *attachment.Revision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attachments[rev.AttachmentID]
	if !ok {
		return ErrNotFound
	}
	m.revSeq++
	rev.ID = m.revSeq
	cp := *rev
	m.revisions[rev.ID] = &cp

	id := rev.ID
	a.CurrentRevisionID = &id
	a.Title = rev.Title
	a.Modified = rev.Created
	return nil
}

func (m *MemoryRepo) GetRevision(ctx context.Context, id int64) (*attachment.Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.revisions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryRepo) ListRevisions(ctx context.Context, attachmentID int64) ([]*attachment.Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*attachment.Revision{}
	for _, r := range m.revisions {
		if r.AttachmentID == attachmentID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryRepo) Attach(ctx context.Context, link *attachment.DocumentAttachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attachments[link.AttachmentID]; !ok {
		return ErrNotFound
	}
	for _, l := range m.links {
		if l.DocumentID == link.DocumentID && l.AttachmentID == link.AttachmentID {
			l.AttachedByID = link.AttachedByID
			l.Name = link.Name
			l.IsOriginal = link.IsOriginal
			return nil
		}
	}
	cp := *link
	m.links = append(m.links, &cp)
	return nil
}

func (m *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]*attachment.DocumentAttachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*attachment.DocumentAttachment{}
	for _, l := range m.links {
		if l.DocumentID == documentID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}
