package ports

import "context"

// HookModifyLnurlpDescription lets deployments rewrite the pay-request
// description before it is committed to the BOLT11 invoice.
const HookModifyLnurlpDescription = "modify-lnurlp-description"

// HookService runs named filter chains over a value. An unregistered hook
// returns the value unchanged.
type HookService interface {
	ApplyFilter(ctx context.Context, hook string, value interface{}) (interface{}, error)
}
