/*
Package description provides the immutable identity of every schedulable piece
of work: the run itself (System), a group of units (Group) and a single unit
(Unit).

Names are dot-separated paths, e.g. `billing.Invoice.totals`. A unit belongs
to a group when the group's name is a leading segment run of the unit's name.
*/
package description
