package testsCommon

// SimulatorStub -
type SimulatorStub struct {
	SeedHandler  func() bool
	StartHandler func()
	StopHandler  func()
}

// Seed -
func (stub *SimulatorStub) Seed() bool {
	if stub.SeedHandler != nil {
		return stub.SeedHandler()
	}

	return false
}

// Start -
func (stub *SimulatorStub) Start() {
	if stub.StartHandler != nil {
		stub.StartHandler()
	}
}

// Stop -
func (stub *SimulatorStub) Stop() {
	if stub.StopHandler != nil {
		stub.StopHandler()
	}
}

// IsInterfaceNil -
func (stub *SimulatorStub) IsInterfaceNil() bool {
	return stub == nil
}
