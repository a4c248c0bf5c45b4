// Package charmlog adapts github.com/charmbracelet/log into a clog.LogProvider
// for callers who want structured, colourised output instead of the stdlib
// default logger.
package charmlog

import (
	"os"

	charm "github.com/charmbracelet/log"

	"github.com/thinkgos/go-dlms-cosem/clog"
)

// Provider wraps a *charm.Logger as a clog.LogProvider.
type Provider struct {
	l *charm.Logger
}

var _ clog.LogProvider = (*Provider)(nil)

// New builds a Provider writing to stderr with the given name prefix.
func New(name string) *Provider {
	l := charm.NewWithOptions(os.Stderr, charm.Options{
		Prefix:          name,
		ReportTimestamp: true,
	})
	return &Provider{l: l}
}

func (p *Provider) Critical(format string, v ...interface{}) { p.l.Errorf("CRITICAL "+format, v...) }
func (p *Provider) Error(format string, v ...interface{})    { p.l.Errorf(format, v...) }
func (p *Provider) Warn(format string, v ...interface{})     { p.l.Warnf(format, v...) }
func (p *Provider) Debug(format string, v ...interface{})    { p.l.Debugf(format, v...) }
func (p *Provider) Trace(format string, v ...interface{})    { p.l.Debugf("TRACE "+format, v...) }
