package aws

import (
	"errors"
	"fmt"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

// CredentialError means no usable identity could be resolved: neither
// explicit keys nor the default provider chain produced credentials.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("no usable AWS credentials: %v", e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// DelegationError means the AssumeRole exchange was rejected.
// Denied distinguishes an authorization rejection (bad ARN, trust
// policy, expired base credentials) from a transport-level failure.
type DelegationError struct {
	RoleARN string
	Denied  bool
	Err     error
}

func (e *DelegationError) Error() string {
	if e.Denied {
		return fmt.Sprintf("assume role %s denied: %v", e.RoleARN, e.Err)
	}
	return fmt.Sprintf("assume role %s failed: %v", e.RoleARN, e.Err)
}

func (e *DelegationError) Unwrap() error { return e.Err }

// ConnectivityError means the post-construction validation listing
// against the source bucket failed, so the session was discarded.
type ConnectivityError struct {
	Bucket string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("validation listing against %s failed: %v", e.Bucket, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// isDenied reports whether err is an authorization rejection from the
// AWS API rather than a transport failure.
func isDenied(err error) bool {
	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == 403 {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDenied"
}
