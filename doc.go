// Package wikimcp turns a wikipedia xml dump into a static MCP tree.
//
// The dumps are available from the wikimedia group here:
//	http://dumps.wikimedia.org/
//
// Pages are streamed out of the dump (plain or bzip2 compressed), narrowed
// by an optional topic filter, stripped of wikitext markup and written as
// static JSON documents: a manifest (mcp.json), a stats and an article list
// resource, and the get_article, list_articles, list_categories and
// categories tools.
//
// See tools/wikimcp for the command line program.
package wikimcp
