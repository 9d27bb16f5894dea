// Package fiscalsync contains the fiscal synchronization bounded context.
// It keeps local business records (customers, products, invoices, receipts)
// linked to their counterparts at a remote fiscal document-certification
// provider.
//
// Key concepts:
//   - Syncable: a local record that may carry a provider-assigned remote id
//   - Adapter: per entity type mapping between local records and provider payloads
//   - RemoteGateway: port for issuing authenticated requests to the provider
//   - Store: tenant-scoped persistence port used by reconciliation
//   - DocumentStatus: submission lifecycle of a fiscal document
//   - SyncRun: history of bulk imports
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package fiscalsync
