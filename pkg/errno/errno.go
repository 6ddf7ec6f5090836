package errno

// Category groups protocol errors the way the host companion app expects
// them: a coarse class plus a flow-specific subcode.
type Category int

const (
	CategoryNone        Category = 0
	CategoryCorruptData Category = 1 // host sent something inconsistent or malformed
	CategoryWallet      Category = 2 // wallet selection problems
	CategoryInternal    Category = 3 // device-side failure, not the host's fault
)

// Errno defines the error code logic reported back to the host. Every
// abort except a user rejection maps to exactly one Errno.
type Errno struct {
	Category Category
	Subcode  int
	Message  string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to an Errno pair for the wire
func Decode(err error) (Category, int, string) {
	if err == nil {
		return OK.Category, OK.Subcode, OK.Message
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Category, typed.Subcode, typed.Message
	case Errno:
		return typed.Category, typed.Subcode, typed.Message
	default:
		return Internal.Category, Internal.Subcode, err.Error()
	}
}

// Common errors
var (
	OK       = Errno{Category: CategoryNone, Subcode: 0, Message: "Success"}
	Internal = Errno{Category: CategoryInternal, Subcode: 1, Message: "Internal device error"}
)

// Data-flow errors (CORRUPT_DATA category). InvalidRequest means the host
// sent a round whose discriminant does not match the phase the flow is in;
// InvalidData means the discriminant matched but the payload failed
// validation.
var (
	ErrInvalidRequest = Errno{Category: CategoryCorruptData, Subcode: 1, Message: "Invalid request for current flow state"}
	ErrInvalidData    = Errno{Category: CategoryCorruptData, Subcode: 2, Message: "Invalid data in request"}
)

// Wallet errors
var (
	ErrWalletNotFound = Errno{Category: CategoryWallet, Subcode: 1, Message: "Wallet not found on device"}
)
