// Package mock provides test doubles for the ai interfaces.
//
// The mocks generate deterministic vectors by default and support behavior
// injection through function fields, so pipeline tests can simulate slow,
// failing, or dimension-shifting embedding services without a network.
package mock
