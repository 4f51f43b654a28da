/*
Package wallet manages the crypto and PayPal wallets assigned to users.

A user holds at most one active wallet per type (BTC, ETH, USDT, PAYPAL).
Wallets are assigned by an admin, either directly or by approving a wallet
request, and balances are credited when deposits confirm.

Usage:

	svc := wallet.NewService(walletRepo, cacheService, metrics)

	// Assign an address to a user
	w, err := svc.AssignWallet(ctx, wallet.AssignInput{UserID: 1, Address: addr, WalletType: "ETH"})

	// Credit a confirmed deposit
	credited, err := svc.Credit(ctx, userID, "BTC", 0.25)

Error Handling:

  - ErrWalletExists: the user already has an active wallet of that type
  - ErrWalletNotFound: no active wallet of that type
  - ErrInvalidAddress: the address does not match the wallet type
  - ErrInvalidWalletType: unknown wallet type

Cache Management:

The active wallet list of each user is cached in Redis and dropped on every
write to one of the user's wallets.
*/
package wallet
