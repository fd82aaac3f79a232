package types

// Version is the canonical bridge version.
// The CLI, the IPC frames and the session log context all report this value.
const Version = "1.2.0"

// ContractVersion is the IPC contract version carried in hello and request frames.
// It moves in lockstep with Version.
const ContractVersion = Version
