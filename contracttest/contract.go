// Package contracttest provides a contract test suite for procfuture providers.
//
// Each contract drives a provider through a procfuture.Executor and checks the
// settlement rules every Launcher must support: single settlement, handle
// propagation, capture policy and error normalization.
package contracttest

// AllContracts returns all test cases for the contract test suite.
func AllContracts() []TestCase {
	const initialCapacity = 20

	contracts := make([]TestCase, 0, initialCapacity)

	contracts = append(contracts, coreContracts()...)
	contracts = append(contracts, captureContracts()...)
	contracts = append(contracts, lifecycleContracts()...)
	contracts = append(contracts, launcherContracts()...)
	contracts = append(contracts, errorContracts()...)

	return contracts
}
