package rdkafka

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy_ErrorsAs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want any
	}{
		{"client_creation", &ClientCreationError{Reason: "no brokers"}, new(*ClientCreationError)},
		{"metadata_fetch", &MetadataFetchError{Code: ErrCodeTimedOut}, new(*MetadataFetchError)},
		{"group_list_fetch", &GroupListFetchError{Code: ErrCodeTimedOut}, new(*GroupListFetchError)},
		{"consumption", &ConsumptionError{Code: ErrCodeTimedOut}, new(*ConsumptionError)},
		{"partition_eof", &PartitionEOFError{Partition: 7}, new(*PartitionEOFError)},
		{"production", &ProductionError{Code: ErrCodeTimedOut}, new(*ProductionError)},
		{"global", &GlobalError{Code: ErrCodeTimedOut}, new(*GlobalError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 包一层后仍可按类型取回
			wrapped := fmt.Errorf("query failed: %w", tt.err)
			switch target := tt.want.(type) {
			case **ClientCreationError:
				require.True(t, errors.As(wrapped, target))
			case **MetadataFetchError:
				require.True(t, errors.As(wrapped, target))
			case **GroupListFetchError:
				require.True(t, errors.As(wrapped, target))
			case **ConsumptionError:
				require.True(t, errors.As(wrapped, target))
			case **PartitionEOFError:
				require.True(t, errors.As(wrapped, target))
			case **ProductionError:
				require.True(t, errors.As(wrapped, target))
			case **GlobalError:
				require.True(t, errors.As(wrapped, target))
			default:
				t.Fatalf("unhandled target type %T", tt.want)
			}
		})
	}
}

func TestPartitionEOFError_CarriesPartition(t *testing.T) {
	t.Parallel()

	err := error(&PartitionEOFError{Partition: 5})

	var eof *PartitionEOFError
	require.ErrorAs(t, err, &eof)
	assert.Equal(t, int32(5), eof.Partition)
	assert.Contains(t, err.Error(), "partition 5")
}

func TestClientCreationError_CarriesDiagnostic(t *testing.T) {
	t.Parallel()

	err := &ClientCreationError{Reason: "No such configuration property"}
	assert.Contains(t, err.Error(), "No such configuration property")
}

func TestErrorCode_String(t *testing.T) {
	t.Parallel()

	// err2str 对已知码返回引擎的描述文本
	assert.Equal(t, "Success", ErrCodeNoError.String())
	assert.NotEmpty(t, ErrCodePartitionEOF.String())
	assert.NotEqual(t, ErrCodeNoError.String(), ErrCodePartitionEOF.String())
}

func TestSentinelErrors_Distinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrNilConfig, ErrClosed, ErrEmptyTopics, ErrFlushTimeout}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestErrFlushTimeout_Wrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: %d messages still in queue", ErrFlushTimeout, 3)
	assert.ErrorIs(t, err, ErrFlushTimeout)
}
