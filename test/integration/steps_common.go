package integration

import (
	"context"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc      *TestContext
	model   string
	cfg     *flex.Config
	owner   flex.Owner
	lastErr error
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Record steps
	sc.Step(`^a new "([^"]*)" record$`, s.aNewRecord)
	sc.Step(`^I set "([^"]*)" to "([^"]*)"$`, s.iSet)
	sc.Step(`^I assign:$`, s.iAssign)
	sc.Step(`^I call "([^"]*)" with "([^"]*)"$`, s.iCallWith)
	sc.Step(`^I mark the record for purge$`, s.iMarkTheRecordForPurge)
	sc.Step(`^I save the record$`, s.iSaveTheRecord)
	sc.Step(`^I save the record in a transaction$`, s.iSaveTheRecordInATransaction)
	sc.Step(`^I delete the record$`, s.iDeleteTheRecord)
	sc.Step(`^I delete the record by its key$`, s.iDeleteTheRecordByItsKey)
	sc.Step(`^I reload the record$`, s.iReloadTheRecord)

	// Assertion steps
	sc.Step(`^"([^"]*)" should be "([^"]*)"$`, s.shouldBe)
	sc.Step(`^"([^"]*)" should be absent$`, s.shouldBeAbsent)
	sc.Step(`^the companion table should have (\d+) rows?$`, s.theCompanionTableShouldHaveRows)
	sc.Step(`^the companion table should have (\d+) rows? for version (\d+)$`, s.theCompanionTableShouldHaveRowsForVersion)
	sc.Step(`^the last step should have failed with an unknown attribute error$`, s.lastStepFailedWithUnknownAttribute)
	sc.Step(`^the last step should have failed with a no method error$`, s.lastStepFailedWithNoMethod)
}

func newOwner(model string) (flex.Owner, error) {
	switch model {
	case "City":
		return &City{}, nil
	case "Dish":
		return &Dish{}, nil
	case "Article":
		return &Article{}, nil
	}
	return nil, fmt.Errorf("unknown model %q", model)
}

func ownerID(owner flex.Owner) uint {
	return uint(reflect.Indirect(reflect.ValueOf(owner)).FieldByName("ID").Uint())
}

// Record steps

func (s *StepsContext) aNewRecord(model string) error {
	owner, err := newOwner(model)
	if err != nil {
		return err
	}
	s.model = model
	s.cfg = s.tc.Configs[model]
	s.owner = owner
	s.lastErr = nil
	return nil
}

// iSet records domain errors for later assertions; only unexpected
// failures fail the step.
func (s *StepsContext) iSet(name, value string) error {
	s.lastErr = s.cfg.Write(s.owner, name, value)
	if s.lastErr != nil && !errors.Is(s.lastErr, flex.ErrUnknownAttribute) {
		return s.lastErr
	}
	return nil
}

func (s *StepsContext) iAssign(table *godog.Table) error {
	attrs := make(map[string]interface{}, len(table.Rows))
	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected NAME | VALUE rows, got %d cells", len(row.Cells))
		}
		attrs[row.Cells[0].Value] = row.Cells[1].Value
	}
	_, err := s.cfg.Assign(s.owner, attrs)
	return err
}

func (s *StepsContext) iCallWith(method, arg string) error {
	_, s.lastErr = s.cfg.Call(s.owner, method, arg)
	if s.lastErr != nil && !errors.Is(s.lastErr, flex.ErrNoMethod) {
		return s.lastErr
	}
	return nil
}

func (s *StepsContext) iMarkTheRecordForPurge() error {
	s.cfg.MarkForPurge(s.owner)
	return nil
}

func (s *StepsContext) iSaveTheRecord() error {
	return s.tc.DB.Save(s.owner).Error
}

func (s *StepsContext) iSaveTheRecordInATransaction() error {
	return s.tc.DB.Transaction(func(tx *gorm.DB) error {
		return tx.WithContext(context.Background()).Save(s.owner).Error
	})
}

func (s *StepsContext) iDeleteTheRecord() error {
	return s.tc.DB.Delete(s.owner).Error
}

func (s *StepsContext) iDeleteTheRecordByItsKey() error {
	model, err := newOwner(s.model)
	if err != nil {
		return err
	}
	return s.tc.DB.Delete(model, ownerID(s.owner)).Error
}

func (s *StepsContext) iReloadTheRecord() error {
	fresh, err := newOwner(s.model)
	if err != nil {
		return err
	}
	if err := s.tc.DB.First(fresh, ownerID(s.owner)).Error; err != nil {
		return err
	}
	s.owner = fresh
	return nil
}

// Assertion steps

func (s *StepsContext) shouldBe(name, expected string) error {
	v, err := s.cfg.Read(s.owner, name)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); v == nil || got != expected {
		return fmt.Errorf("expected %s to be %q, got %v", name, expected, v)
	}
	return nil
}

func (s *StepsContext) shouldBeAbsent(name string) error {
	v, err := s.cfg.Read(s.owner, name)
	if err != nil {
		return err
	}
	if v != nil {
		return fmt.Errorf("expected %s to be absent, got %v", name, v)
	}
	return nil
}

func (s *StepsContext) theCompanionTableShouldHaveRows(expected int) error {
	var n int64
	err := s.tc.DB.Table(s.cfg.Companion.Table).
		Where(s.cfg.Companion.ForeignKey+" = ?", ownerID(s.owner)).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n != int64(expected) {
		return fmt.Errorf("expected %d companion rows, got %d", expected, n)
	}
	return nil
}

func (s *StepsContext) theCompanionTableShouldHaveRowsForVersion(expected, version int) error {
	var n int64
	err := s.tc.DB.Table(s.cfg.Companion.Table).
		Where(s.cfg.Companion.ForeignKey+" = ?", ownerID(s.owner)).
		Where(s.cfg.Companion.VersionColumn+" = ?", version).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n != int64(expected) {
		return fmt.Errorf("expected %d companion rows for version %d, got %d", expected, version, n)
	}
	return nil
}

func (s *StepsContext) lastStepFailedWithUnknownAttribute() error {
	if !errors.Is(s.lastErr, flex.ErrUnknownAttribute) {
		return fmt.Errorf("expected an unknown attribute error, got %v", s.lastErr)
	}
	return nil
}

func (s *StepsContext) lastStepFailedWithNoMethod() error {
	if !errors.Is(s.lastErr, flex.ErrNoMethod) {
		return fmt.Errorf("expected a no method error, got %v", s.lastErr)
	}
	return nil
}
