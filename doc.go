// Package tradebook provides the position and ledger accounting engine
// behind a personal trading journal. It is designed around a document
// store holding three collections (positions, account entries, strategies)
// and keeps every aggregate a pure function of the stored documents.
//
// The core functionalities include:
//   - Position Lifecycle: Opening, reinforcing, partially and fully closing
//     positions made of dated entry and exit executions, with cost basis,
//     average entry price and realized P&L derived on demand.
//   - Cash Account: Recording deposits, withdrawals and currency
//     conversions, folded together with realized P&L into per-currency
//     balances.
//   - History Paging: A forward-only cursor over closed positions, newest
//     first, with page range bookkeeping for display.
//   - Statistics: Win rates, per-asset and per-direction breakdowns,
//     strategy attribution, profit factor, monthly buckets and cumulative
//     P&L series computed over the full closed set.
//
// This package serves as the foundational logic for the `tb` command-line
// tool; persistence lives in the docstore subpackage and formatting in the
// renderer subpackage.
package tradebook
