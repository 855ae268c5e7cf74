package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "laptopstats/internal/errors"
	"laptopstats/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		wantType      apperrors.ErrorType
		errorContains string
	}{
		{
			name: "valid csv",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteLaptopsCSV(t, t.TempDir())
			},
		},
		{
			name: "valid workbook extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "laptops.XLSX", "not parsed here")
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr:       true,
			wantType:      apperrors.ErrTypeNotFound,
			errorContains: "missing.csv",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			wantType:      apperrors.ErrTypeValidation,
			errorContains: "is a directory",
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "empty.csv", "")
			},
			wantErr:       true,
			wantType:      apperrors.ErrTypeValidation,
			errorContains: "is empty",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "laptops.json", "[]")
			},
			wantErr:       true,
			wantType:      apperrors.ErrTypeValidation,
			errorContains: "unsupported extension",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteFile(t, t.TempDir(), "~$laptops.xlsx", "lock")
			},
			wantErr:       true,
			wantType:      apperrors.ErrTypeValidation,
			errorContains: "temporary Excel file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupFunc(t)
			v := NewFileValidator(slog.Default())

			err := v.ValidateInputFile(path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		logger, logs := testutil.NewTestLogger(t)
		v := NewFileValidator(logger)

		require.NoError(t, v.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		_, err = os.Stat(filepath.Join(dir, ".write_test"))
		assert.True(t, os.IsNotExist(err), "probe file should be removed")
		testutil.AssertNoErrors(t, logs)
	})

	t.Run("path occupied by a file", func(t *testing.T) {
		file := testutil.WriteFile(t, t.TempDir(), "out", "x")
		logger, logs := testutil.NewTestLogger(t)
		v := NewFileValidator(logger)

		err := v.ValidateOutputDirectory(file)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
		testutil.AssertLogged(t, logs, slog.LevelError, "Failed to create output directory")
	})
}

func TestNewFileValidator_NilLogger(t *testing.T) {
	v := NewFileValidator(nil)
	require.NotNil(t, v)
	assert.NotNil(t, v.logger)
}
