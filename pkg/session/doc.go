/*
Package session drives one search-and-replace interaction for a UI shell.

	            +-------------+
	            |   Session   |
	            | (Navigator) |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Match   |           | Replace |
	| (Locator) |           | (Apply) |
	+-----------+           +---------+

🎯 Purpose:
- Holds the live query, replacement text and case flag
- Recomputes the ordered match list on every relevant change
- Keeps the cursor valid across recomputation
- Exposes next/previous/replace-one/replace-all to the UI layer

🔄 Flow:
1. UI shell opens a session against the host content API
2. Query/flag updates re-run eligibility → extraction → matching
3. Replacements go through the staleness-guarded applier
4. Every replacement triggers a synchronous recompute

📝 Design Philosophy:
All state lives in the session, not in globals. Configuration (shortcut
binding, case default, rule providers) arrives as an explicit Options
value; hooks are ordered lists with defined composition, never an
implicit registry. Every operation is synchronous and idempotent to
recompute, so the host's event loop can call in at any time.
*/
package session
