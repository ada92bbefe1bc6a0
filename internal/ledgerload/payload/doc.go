/*
Package payload defines the request bodies sent to the ledger API, one type per resource kind, and
builder functions that fill in the API's fixed conventions and validate required fields before
anything is serialised.

Dates are always rendered as "dd MMMM yyyy" (see idgen.DateLayout) with locale "en"; callers pass
the date in explicitly so builders stay free of clock reads and I/O. Amounts are
shopspring/decimal values, which the API accepts as strings when a locale is given.

Builders never mutate shared state and are safe to call from any number of simulated users.
*/
package payload
