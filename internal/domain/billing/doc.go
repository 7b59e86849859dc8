// Package billing contains the billing core: the Bill aggregate and its
// payment lifecycle, the due-date and late-fee calculators, the
// fee-schedule resolver, and the collaborator contracts (storage, usage
// resolution, notification) the billing engine orchestrates against.
package billing
