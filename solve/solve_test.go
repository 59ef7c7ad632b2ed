package solve

import (
	"testing"

	"github.com/dannbuckley/intcode/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func testOpts(t *testing.T) []vm.VMOpt {
	return []vm.VMOpt{vm.LoggerOpt(zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel)))}
}

func TestGravity(t *testing.T) {
	got, err := Gravity([]int64{1, 0, 0, 0, 99}, 4, 4, testOpts(t)...)
	require.NoError(t, err)
	assert.Equal(t, int64(198), got)

	got, err = Gravity([]int64{2, 0, 0, 0, 99}, 0, 4, testOpts(t)...)
	require.NoError(t, err)
	assert.Equal(t, int64(2*99), got)

	_, err = Gravity([]int64{3, 0, 99}, 0, 0, testOpts(t)...)
	require.ErrorIs(t, err, ErrNotHalted)
}

func TestNounVerb(t *testing.T) {
	noun, verb, err := NounVerb([]int64{1, 0, 0, 0, 99}, 198, testOpts(t)...)
	require.NoError(t, err)
	assert.Equal(t, int64(4), noun)
	assert.Equal(t, int64(4), verb)

	_, _, err = NounVerb([]int64{1, 0, 0, 0, 99}, -5, testOpts(t)...)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDiagnostic(t *testing.T) {
	tests := []struct {
		name    string
		program []int64
		id      int64
		want    int64
		wantErr bool
		check   func(*testing.T, error)
	}{
		{
			name:    "passing tests",
			program: []int64{104, 0, 104, 0, 104, 42, 99},
			want:    42,
		},
		{
			name:    "echo id",
			program: []int64{3, 0, 4, 0, 99},
			id:      5,
			want:    5,
		},
		{
			name:    "failed test",
			program: []int64{104, 0, 104, 3, 104, 42, 99},
			wantErr: true,
			check: func(t *testing.T, err error) {
				var target *DiagnosticError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, 1, target.Index)
				assert.Equal(t, int64(3), target.Value)
			},
		},
		{
			name:    "no output",
			program: []int64{99},
			wantErr: true,
		},
		{
			name:    "fault",
			program: []int64{1, -1, 0, 0, 99},
			wantErr: true,
			check: func(t *testing.T, err error) {
				var target *vm.AddressError
				require.ErrorAs(t, err, &target)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Diagnostic(tt.program, tt.id, testOpts(t)...)
			if tt.wantErr {
				require.Error(t, err)
				if tt.check != nil {
					tt.check(t, err)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoost(t *testing.T) {
	quine := []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}
	got, err := Boost(quine, 1, testOpts(t)...)
	require.NoError(t, err)
	assert.Equal(t, quine, got)

	got, err = Boost([]int64{3, 0, 4, 0, 99}, 2, testOpts(t)...)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, got)

	_, err = Boost([]int64{3, 0, 3, 0, 99}, 2, testOpts(t)...)
	require.ErrorIs(t, err, ErrNotHalted)
}
