/*
Package wallet implements the wallet ledger: wallet lifecycle, synchronous
deposits and the two phases of withdrawals and transfers.

Withdrawals and transfers are split in two. Admission (RequestWithdrawal,
RequestTransfer) validates the request against a lock-free read of the store
and hands a command to the job queue. Execution (WithdrawFunds,
TransferFunds) runs later inside a worker, takes row locks, re-checks the
balance and writes the ledger entries.

Every command carries a reference. Execution writes the reference on its
ledger entry, and a transfer also writes credit-<reference> on the credit
side, so a redelivered command finds its entry and returns without writing.

Transfers lock both wallets in ascending id order, which keeps two opposing
transfers from deadlocking.

Usage:

	svc := wallet.NewService(repo, walletCache, jobQueue, wallet.WalletConfig{}, metrics)

	w, err := svc.CreateWallet(ctx, userID)
	entry, err := svc.Deposit(ctx, models.DepositRequest{WalletID: w.ID, Amount: amount}, userID)
	handle, err := svc.RequestTransfer(ctx, req, userID)

Cache writes are best-effort. A failed invalidation is logged and the
mutation still succeeds; a failed read falls through to the store.
*/
package wallet
