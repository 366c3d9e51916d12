/*
Crash contract keeps custody of user deposits made in several registered
tokens and accounts them in an internal ledger.

The owner (the account deploying the contract) registers supported tokens
under small integer coin IDs and assigns the agent. The agent drives
settlement of user balances on behalf of the game logic built on top of the
ledger. Users approve the contract to spend their tokens and call deposit,
the contract pulls the tokens with transferFrom and credits the amount that
actually arrived. Users withdraw their own balances, the agent settles them
to arbitrary recipients.

Tokens must implement NEP-17 and an allowance extension:

	approve(owner, spender Hash160, amount Integer) Boolean
	allowance(owner, spender Hash160) Integer
	transferFrom(from, to Hash160, amount Integer, data Any) Boolean

where the spender of transferFrom is the calling contract. Direct NEP-17
transfers to the contract are rejected, deposit is the only way to credit a
ledger balance.

# Contract notifications

AgentChanged notification. This notification is produced when the owner
replaces the agent.

	AgentChanged:
	  - name: previous
	    type: Hash160
	  - name: current
	    type: Hash160

CoinAdded notification. This notification is produced when the owner
registers a token under a coin ID.

	CoinAdded:
	  - name: coinID
	    type: Integer
	  - name: token
	    type: Hash160

Deposit notification. This notification is produced when user balance is
credited with tokens pulled from the user account.

	Deposit:
	  - name: user
	    type: Hash160
	  - name: coinID
	    type: Integer
	  - name: amount
	    type: Integer

Withdraw notification. This notification is produced when user takes tokens
back from the ledger.

	Withdraw:
	  - name: user
	    type: Hash160
	  - name: coinID
	    type: Integer
	  - name: amount
	    type: Integer

Settle notification. This notification is produced when the agent pays
tokens from user balance to the recipient.

	Settle:
	  - name: user
	    type: Hash160
	  - name: coinID
	    type: Integer
	  - name: amount
	    type: Integer
	  - name: recipient
	    type: Hash160
*/
package crash
