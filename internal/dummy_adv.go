package internal

import "github.com/go-ble/ble"

// DummyAddr is a fixed BLE address for tests
type DummyAddr struct {
	Address string
}

func (addr DummyAddr) String() string { return addr.Address }

// DummyAdv is a canned advertisement for scan adapter tests
type DummyAdv struct {
	Address ble.Addr
	Rssi    int
}

func (a DummyAdv) LocalName() string              { return "" }
func (a DummyAdv) ManufacturerData() []byte       { return nil }
func (a DummyAdv) ServiceData() []ble.ServiceData { return nil }
func (a DummyAdv) Services() []ble.UUID           { return nil }
func (a DummyAdv) OverflowService() []ble.UUID    { return nil }
func (a DummyAdv) TxPowerLevel() int              { return 0 }
func (a DummyAdv) Connectable() bool              { return true }
func (a DummyAdv) SolicitedService() []ble.UUID   { return nil }
func (a DummyAdv) RSSI() int                      { return a.Rssi }
func (a DummyAdv) Addr() ble.Addr                 { return a.Address }
