// Package fulfillment contains the Fulfillment bounded context.
// This context turns paid sticker/sign orders into print-ready sheets and
// shipping labels: it owns the page layout rules, the address formatting
// heuristics used on labels, and the reconciliation summary contract.
package fulfillment
