package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDependency struct {
	name      string
	dependsOn []string
	startErrs int
	log       *[]string
}

func (f *fakeDependency) GetName() string     { return f.name }
func (f *fakeDependency) DependsOn() []string { return f.dependsOn }

func (f *fakeDependency) Start(_ context.Context) error {
	if f.startErrs > 0 {
		f.startErrs--
		return errors.New(f.name + " unavailable")
	}
	*f.log = append(*f.log, "start:"+f.name)
	return nil
}

func (f *fakeDependency) Stop(_ context.Context) error {
	*f.log = append(*f.log, "stop:"+f.name)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestStartup(t *testing.T) {
	t.Run("starts dependencies before dependents", func(t *testing.T) {
		var log []string
		s := New(testLogger(), 1)
		s.AddDependency(&fakeDependency{name: "http-server", dependsOn: []string{"database"}, log: &log})
		s.AddDependency(&fakeDependency{name: "database", log: &log})

		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, []string{"start:database", "start:http-server"}, log)
	})

	t.Run("stops in reverse start order", func(t *testing.T) {
		var log []string
		s := New(testLogger(), 1)
		s.AddDependency(&fakeDependency{name: "database", log: &log})
		s.AddDependency(&fakeDependency{name: "consumer", dependsOn: []string{"database"}, log: &log})

		require.NoError(t, s.Start(context.Background()))
		log = nil
		require.NoError(t, s.Stop(context.Background()))
		assert.Equal(t, []string{"stop:consumer", "stop:database"}, log)
	})

	t.Run("retries a failing dependency", func(t *testing.T) {
		var log []string
		s := New(testLogger(), 3)
		s.AddDependency(&fakeDependency{name: "database", startErrs: 1, log: &log})

		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, []string{"start:database"}, log)
	})

	t.Run("fails after max attempts", func(t *testing.T) {
		var log []string
		s := New(testLogger(), 2)
		s.AddDependency(&fakeDependency{name: "database", startErrs: 5, log: &log})

		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("unregistered parent is an error", func(t *testing.T) {
		var log []string
		s := New(testLogger(), 1)
		s.AddDependency(&fakeDependency{name: "consumer", dependsOn: []string{"kafka"}, log: &log})

		assert.Error(t, s.Start(context.Background()))
	})
}
