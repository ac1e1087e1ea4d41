package infra

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

const (
	contactSheet = "Sheet1"
	timeLayout   = "2006-01-02 15:04:05"
)

var contactColumns = []string{"Name", "Phone", "Scheduled_Time", "Status", "Created_At"}

// contactStore держит всю таблицу в одном xlsx-файле: каждый метод читает
// её целиком, правит и переписывает заново. Мьютекс обязателен — иначе
// конкурентные писатели теряют чужие апдейты.
type contactStore struct {
	mu       sync.Mutex
	filename string
	loc      *time.Location
}

func NewContactStore(filename string, loc *time.Location) (ports.ContactStore, error) {
	s := &contactStore{filename: filename, loc: loc}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *contactStore) ensureFile() error {
	if _, err := os.Stat(s.filename); err == nil {
		return nil
	}
	if err := s.writeAll(nil); err != nil {
		return fmt.Errorf("create contacts file: %w", err)
	}
	log.Printf("[contacts] created new file: %s", s.filename)
	return nil
}

func (s *contactStore) Add(ctx context.Context, name, phone string, scheduledTime time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.readAll()
	if err != nil {
		log.Printf("[contacts] read failed: %v", err)
		return false
	}

	contacts = append(contacts, ports.Contact{
		Name:          name,
		Phone:         phone,
		ScheduledTime: scheduledTime,
		Status:        ports.StatusScheduled,
		CreatedAt:     time.Now().In(s.loc),
	})

	if err := s.writeAll(contacts); err != nil {
		log.Printf("[contacts] write failed: %v", err)
		return false
	}
	return true
}

func (s *contactStore) UpdateStatus(ctx context.Context, phone string, status ports.ContactStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.readAll()
	if err != nil {
		log.Printf("[contacts] read failed: %v", err)
		return false
	}

	matched := false
	for i := range contacts {
		if contacts[i].Phone == phone {
			contacts[i].Status = status
			matched = true
		}
	}
	if !matched {
		log.Printf("[contacts] phone %s not found", phone)
		return false
	}

	if err := s.writeAll(contacts); err != nil {
		log.Printf("[contacts] write failed: %v", err)
		return false
	}
	return true
}

func (s *contactStore) TransitionStatus(ctx context.Context, phone string, from, to ports.ContactStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.readAll()
	if err != nil {
		log.Printf("[contacts] read failed: %v", err)
		return false
	}

	for i := range contacts {
		if contacts[i].Phone == phone && contacts[i].Status == from {
			contacts[i].Status = to
			if err := s.writeAll(contacts); err != nil {
				log.Printf("[contacts] write failed: %v", err)
				return false
			}
			return true
		}
	}
	return false
}

func (s *contactStore) GetAll(ctx context.Context) ([]ports.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

func (s *contactStore) GetPending(ctx context.Context, now time.Time) ([]ports.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var pending []ports.Contact
	for _, c := range contacts {
		if c.Status == ports.StatusScheduled && !c.ScheduledTime.After(now) {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func (s *contactStore) Delete(ctx context.Context, phone string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	contacts, err := s.readAll()
	if err != nil {
		log.Printf("[contacts] read failed: %v", err)
		return false
	}

	kept := contacts[:0]
	for _, c := range contacts {
		if c.Phone != phone {
			kept = append(kept, c)
		}
	}

	if err := s.writeAll(kept); err != nil {
		log.Printf("[contacts] write failed: %v", err)
		return false
	}
	return true
}

func (s *contactStore) readAll() ([]ports.Contact, error) {
	f, err := excelize.OpenFile(s.filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.filename, err)
	}
	defer f.Close()

	rows, err := f.GetRows(contactSheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var contacts []ports.Contact
	for i, row := range rows {
		if i == 0 {
			continue // заголовок
		}
		var c ports.Contact
		if len(row) > 0 {
			c.Name = row[0]
		}
		if len(row) > 1 {
			c.Phone = row[1]
		}
		if len(row) > 2 {
			c.ScheduledTime, _ = time.ParseInLocation(timeLayout, row[2], s.loc)
		}
		if len(row) > 3 {
			c.Status = ports.ContactStatus(row[3])
		}
		if len(row) > 4 {
			c.CreatedAt, _ = time.ParseInLocation(timeLayout, row[4], s.loc)
		}
		if c.Name == "" && c.Phone == "" {
			continue
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

func (s *contactStore) writeAll(contacts []ports.Contact) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, col := range contactColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(contactSheet, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, c := range contacts {
		values := []string{
			c.Name,
			c.Phone,
			c.ScheduledTime.In(s.loc).Format(timeLayout),
			string(c.Status),
			c.CreatedAt.In(s.loc).Format(timeLayout),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(contactSheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SaveAs(s.filename); err != nil {
		return fmt.Errorf("save %s: %w", s.filename, err)
	}
	return nil
}
