package dataslot

// SlotID numbers a data slot as declared in data.json.
type SlotID = uint16

// Bridge is what firmware consumes from the data slot hardware.
type Bridge interface {
	// WaitReady blocks until every slot is resident. It has no timeout: the
	// boot contract guarantees the flag is eventually raised.
	WaitReady()

	// Size returns the number of bytes loaded into slot id.
	Size(id SlotID) (uint32, error)

	// ReadAt copies len(p) bytes starting at off within slot id into p.
	ReadAt(id SlotID, off uint32, p []byte) error

	// Load and LoadToAddr are staged-load entry points; they always return
	// ErrNotSupported.
	Load(id SlotID, dest []byte) (int, error)
	LoadToAddr(id SlotID, addr uint32) (int, error)
}

// Unsupported is a bridge with no slots behind it. WaitReady returns at once
// and every query fails with ErrNotSupported.
type Unsupported struct{}

var _ Bridge = Unsupported{}

func (Unsupported) WaitReady() {}

func (Unsupported) Size(SlotID) (uint32, error) { return 0, ErrNotSupported }

func (Unsupported) ReadAt(SlotID, uint32, []byte) error { return ErrNotSupported }

func (Unsupported) Load(SlotID, []byte) (int, error) { return 0, ErrNotSupported }

func (Unsupported) LoadToAddr(SlotID, uint32) (int, error) { return 0, ErrNotSupported }
