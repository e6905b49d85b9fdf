/*
Package sketch contains the duplicate-line sketch used to pre-filter large line
streams before an exact sort | uniq -d pass.

It is a count-min style sketch with a single shared row: a flat array of 8 bit
saturating counters, addressed by double hashing (h1 + i*h2) over a power of
two width. Every insert bumps each probed counter, and the estimate for a line
is the minimum across its probes. Counters are only ever inflated by
collisions, so the estimate never undercounts.

Properties:

* No false negatives: a line inserted twice always estimates >= 2.
* False positives (unique lines reported as duplicates) happen when every
probe of a line collides with some other line. For n unique lines the rate
is roughly (1 - e^(-probes*n/width)) ^ probes.
* Sketches built with identical parameters merge by saturating addition, in
any order, giving the same counters as one build over all inputs.

Hashing is unkeyed so that sketches built on different machines for
different shards stay comparable. Adversarial inputs can force collisions.

Sizing examples (1 byte per counter, width rounded up to a power of two):

* 8MiB sketch, 2 probes
** 100k unique lines: false positive rate ~1:1.6k
** 1mil unique lines: false positive rate ~1:20

* 1GiB sketch, 2 probes
** 10mil unique lines: false positive rate ~1:3k
** 100mil unique lines: false positive rate ~1:35

False positives only cost work in the exact pass (meh)
False negatives would lose duplicates (bad), and cannot happen here
*/
package sketch
