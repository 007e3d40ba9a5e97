/*
Package docstore implements the on-disk document store of a search
index: it persists the original serialized form of every indexed
document and retrieves any single document by its numeric id with at
most one block decompression per lookup.

# Data Structure Documentation

# Store

A store contains a series of compressed document blocks followed by a
serialized skip index and a store footer.

	Store layout:
	+---------+---------+---------+------------+--------------+
	| block 1 |   ...   | block n | skip index | store footer |
	+---------+---------+---------+------------+--------------+

	Skip index:
	+-----------------+-----------------+--------------------+-----------------------+--------------------------+-------+
	| count (uvarint) | key 1 (uvarint) | offset 1 (uvarint) | key 2 (uvarint,delta) | offset 2 (uvarint,delta) |  ...  |
	+-----------------+-----------------+--------------------+-----------------------+--------------------------+-------+

	Store footer:
	+----------------------------+-----------------------+
	| index offset (8 bytes, LE) | max doc (4 bytes, LE) |
	+----------------------------+-----------------------+

The skip index holds one entry per block. The entry key is the id of
the block's first document plus one, the value is the absolute byte
offset of the block within the data region. A floor seek with
key = docID+1 therefore lands on the block covering docID, with the
zero entry (0, 0) degenerating to "block 0 at offset 0".

# Block

A block is a compressed run of concatenated documents, stored with a
fixed-size length prefix. The compression codec is a store-level
contract between writer and reader, it is not recorded on disk.

	Block layout:
	+---------------------------------+------------------+
	| compressed length (4 bytes, LE) | compressed bytes |
	+---------------------------------+------------------+

	Decompressed block:
	+-------------------+----------------+-------------------+----------------+-------+
	| doc len (uvarint) | doc 1 (varlen) | doc len (uvarint) | doc 2 (varlen) |  ...  |
	+-------------------+----------------+-------------------+----------------+-------+

# Sources

All reads go through Source, an immutable, shareable view over a byte
buffer (in-memory or mmap-backed). Slicing a Source is O(1) and never
copies bytes; every slice keeps the whole backing buffer alive.
*/
package docstore
