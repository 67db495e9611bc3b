// File: pkg/storage/cos/auth.go
package cos

import (
	"context"
	"fmt"

	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

const (
	authorizationHeader     = "Authorization"
	serviceInstanceIDHeader = "ibm-service-instance-id"
)

// bearerAuth adds the IAM token to every request. It runs at the end of the
// finalize step so it applies to each retry attempt.
func bearerAuth(tokens *tokenSource, instanceID string) func(*middleware.Stack) error {
	mw := middleware.FinalizeMiddlewareFunc("IAMBearerAuth",
		func(ctx context.Context, in middleware.FinalizeInput, next middleware.FinalizeHandler) (out middleware.FinalizeOutput, metadata middleware.Metadata, err error) {
			req, ok := in.Request.(*smithyhttp.Request)
			if !ok {
				return out, metadata, fmt.Errorf("unexpected request middleware type %T", in.Request)
			}

			token, err := tokens.Token(ctx)
			if err != nil {
				return out, metadata, err
			}

			req.Header.Set(authorizationHeader, "Bearer "+token)
			if instanceID != "" {
				req.Header.Set(serviceInstanceIDHeader, instanceID)
			}

			return next.HandleFinalize(ctx, in)
		},
	)

	return func(stack *middleware.Stack) error {
		return stack.Finalize.Add(mw, middleware.After)
	}
}
