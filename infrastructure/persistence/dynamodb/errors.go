package dynamodb

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

// conditionFailed reports whether err is a conditional-write rejection.
// Callers translate it per call site: a guarded create maps it to Conflict, a
// guarded delete to NotFound.
func conditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return stderrors.As(err, &ccf)
}

// translateStorageError classifies a DynamoDB failure: throttling, capacity
// and timeout failures surface as retryable StorageUnavailable; anything else
// is Internal.
func translateStorageError(operation string, err error) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.NewUnavailableError(operation, err)
	}

	var throughput *types.ProvisionedThroughputExceededException
	var requestLimit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if stderrors.As(err, &throughput) || stderrors.As(err, &requestLimit) || stderrors.As(err, &internal) {
		return errors.NewUnavailableError(operation, err)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ServiceUnavailable", "LimitExceededException":
			return errors.NewUnavailableError(operation, err)
		}
	}

	return errors.NewInternalError("storage operation failed: " + operation).WithCause(err)
}
