/*
Package vesting implements custody of funds that are released over time.
Anyone can create a lock by depositing funds for a beneficiary together with
a release schedule. Funds are held on a vault account and can be paid out
only through claims, each claim transferring whatever the schedule has made
available since the previous one.

Two release schedules are supported. A linear schedule releases the amount
proportionally over a time window. A cliff schedule releases the whole
amount at once when a deadline is reached.
*/
package vesting
