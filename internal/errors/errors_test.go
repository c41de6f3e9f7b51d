package errors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCustomerNotFound(t *testing.T) {
	err := CustomerNotFound(42)
	require.EqualError(t, err, "customer with id 42 doesn't exist")

	b, jsonErr := json.Marshal(err)
	require.NoError(t, jsonErr, "error must be serializable")
	require.JSONEq(t, `{"target":"customer","message":"customer with id 42 doesn't exist"}`, string(b))
}
