/*
Package status renders search-and-replace outcomes for the UI layer.

🎯 Purpose:
- Formats "replaced N of M" summaries
- Formats the cursor position indicator
- Provides user-friendly feedback logging for replace operations

🤝 Interfaces:
- Formatter: formats summaries, positions and errors
- UserLogger: prints user feedback and mirrors it to zerolog
*/
package status
