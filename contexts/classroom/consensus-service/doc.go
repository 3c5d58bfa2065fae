// Package consensusservice implements classroom presentation grading by
// weighted consensus.
//
// Registered identities (professor, two TA slots, students) vote on
// presentations. Professor and TA ballots overwrite; student ballots
// accumulate into a single majority block. A manager finalizes each
// presentation to PASS, FAIL or a tie that only the professor can resolve.
// Finalization and override events are written to a transactional outbox and
// relayed by the worker process.
package consensusservice
