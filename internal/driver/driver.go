// Package driver 按策略依次处理声明, 收集函数记录与诊断
package driver

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vlower/internal/host"
	"vlower/internal/lower"
	"vlower/internal/strategy"
	"vlower/internal/util"
	"vlower/internal/vir"
)

// Source is where the driver takes its declarations from.
type Source interface {
	Table() *host.Table
	Items() []*host.Item
	VstdCrate() string
}

// Diagnostic is the failure of one declaration. The declaration is left
// out of both the krate and the erasure ledger.
type Diagnostic struct {
	Item host.DefID
	Err  error
}

type Result struct {
	RunID       string
	Krate       *vir.Krate
	Erasure     *vir.ErasureInfo
	Diagnostics []Diagnostic
	// Fingerprints maps each assembled function to the hash of its record.
	Fingerprints map[string]string
}

type Driver struct {
	source   Source
	strategy strategy.Strategy
}

func NewDriver(source Source, s strategy.Strategy) *Driver {
	if s == nil {
		s = strategy.NewFIFO()
	}
	return &Driver{source: source, strategy: s}
}

// Run 处理全部声明, 单个声明失败不影响其余声明
func (d *Driver) Run() (*Result, error) {
	items := d.source.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("no item found")
	}
	result := &Result{
		RunID:        uuid.New().String(),
		Krate:        &vir.Krate{},
		Erasure:      &vir.ErasureInfo{},
		Fingerprints: make(map[string]string),
	}
	logger := log.WithField("run", result.RunID)
	ctx := lower.NewContext(d.source.Table(), result.Erasure, d.source.VstdCrate())
	startTime := time.Now()

	if err := d.strategy.Push(items...); err != nil {
		return nil, errors.Wrap(err, "Push")
	}
	for d.strategy.HasNext() {
		item, err := d.strategy.Pop()
		if err != nil {
			return nil, errors.Wrap(err, "Pop")
		}
		before := len(result.Krate.Functions)
		if err := d.checkItem(ctx, result.Krate, item); err != nil {
			logger.WithFields(log.Fields{"item": item.ID(), "kind": item.Kind}).Debugf("rejected: %v", err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Item: item.ID(), Err: err})
			continue
		}
		for _, f := range result.Krate.Functions[before:] {
			fp, err := util.Fingerprint(f)
			if err != nil {
				return nil, errors.Wrapf(err, "Fingerprint %s", f.Name)
			}
			result.Fingerprints[f.Name.String()] = fp
		}
	}

	logger.WithFields(log.Fields{
		"functions":   len(result.Krate.Functions),
		"external":    len(result.Erasure.ExternalFunctions),
		"diagnostics": len(result.Diagnostics),
	}).Infof("lowering done in %.3fs", time.Since(startTime).Seconds())
	return result, nil
}

func (d *Driver) checkItem(ctx *lower.Context, krate *vir.Krate, item *host.Item) error {
	switch item.Kind {
	case host.ItemFn:
		_, err := ctx.CheckItemFn(krate, item.Fn)
		return err
	case host.ItemConst:
		return ctx.CheckItemConst(krate, item.Const)
	case host.ItemForeignFn:
		return ctx.CheckForeignItemFn(krate, item.Foreign)
	}
	return errors.Errorf("unknown item kind %s", item.Kind)
}

// Failed reports whether any declaration produced a diagnostic.
func (r *Result) Failed() bool {
	return len(r.Diagnostics) > 0
}
