package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// employeeRecord and projectRecord are the wire shapes: both carry the
// mirrored membership view of their side. On load only the project side is
// authoritative; the employee-side mirror is rebuilt, never trusted.
type employeeRecord struct {
	core.Employee
	Projects []core.Membership `json:"projects"`
}

type projectRecord struct {
	core.Project
	Employees []core.Membership `json:"employees"`
}

// SnapshotStore encodes ledger state into the five snapshot keys and back.
type SnapshotStore struct {
	kv KV
}

func NewSnapshotStore(kv KV) *SnapshotStore {
	return &SnapshotStore{kv: kv}
}

// SaveState writes all five keys. There is no cross-key transaction: if the
// process dies midway the snapshot lags by one operation, which the load
// path tolerates.
func (s *SnapshotStore) SaveState(ctx context.Context, st ledger.State) error {
	memberships := make(map[string][]core.Membership) // by project id
	byEmployee := make(map[string][]core.Membership)
	for _, m := range st.Memberships {
		memberships[m.ProjectID] = append(memberships[m.ProjectID], m)
		byEmployee[m.EmployeeID] = append(byEmployee[m.EmployeeID], m)
	}

	employees := make([]employeeRecord, 0, len(st.Employees))
	for _, e := range st.Employees {
		employees = append(employees, employeeRecord{Employee: e, Projects: byEmployee[e.ID]})
	}
	projects := make([]projectRecord, 0, len(st.Projects))
	for _, p := range st.Projects {
		projects = append(projects, projectRecord{Project: p, Employees: memberships[p.ID]})
	}

	blobs := map[string]any{
		KeyCompanyData: st.Company,
		KeyExpenses:    st.Expenses,
		KeyIncomes:     st.Incomes,
		KeyEmployees:   employees,
		KeyProjects:    projects,
	}
	for _, key := range SnapshotKeys {
		data, err := json.Marshal(blobs[key])
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		if err := s.kv.Save(ctx, key, data); err != nil {
			return err
		}
	}
	return nil
}

// LoadState reads the five keys, defaulting absent or null keys to empty
// collections.
func (s *SnapshotStore) LoadState(ctx context.Context) (ledger.State, error) {
	var st ledger.State

	if data, err := s.load(ctx, KeyCompanyData); err != nil {
		return st, err
	} else if data != nil {
		var company core.CompanyData
		if err := json.Unmarshal(data, &company); err != nil {
			return st, fmt.Errorf("unmarshal %s: %w", KeyCompanyData, err)
		}
		st.Company = &company
	}

	if data, err := s.load(ctx, KeyExpenses); err != nil {
		return st, err
	} else if data != nil {
		if err := json.Unmarshal(data, &st.Expenses); err != nil {
			return st, fmt.Errorf("unmarshal %s: %w", KeyExpenses, err)
		}
	}

	if data, err := s.load(ctx, KeyIncomes); err != nil {
		return st, err
	} else if data != nil {
		if err := json.Unmarshal(data, &st.Incomes); err != nil {
			return st, fmt.Errorf("unmarshal %s: %w", KeyIncomes, err)
		}
	}

	if data, err := s.load(ctx, KeyEmployees); err != nil {
		return st, err
	} else if data != nil {
		var records []employeeRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return st, fmt.Errorf("unmarshal %s: %w", KeyEmployees, err)
		}
		for _, rec := range records {
			st.Employees = append(st.Employees, rec.Employee)
		}
	}

	if data, err := s.load(ctx, KeyProjects); err != nil {
		return st, err
	} else if data != nil {
		var records []projectRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return st, fmt.Errorf("unmarshal %s: %w", KeyProjects, err)
		}
		for _, rec := range records {
			st.Projects = append(st.Projects, rec.Project)
			for _, m := range rec.Employees {
				// Tolerate older blobs that omit the project id on the
				// project-side mirror.
				if m.ProjectID == "" {
					m.ProjectID = rec.ID
				}
				st.Memberships = append(st.Memberships, m)
			}
		}
	}

	return st, nil
}

// load treats a literal JSON null the same as an absent key.
func (s *SnapshotStore) load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.kv.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return data, nil
}
