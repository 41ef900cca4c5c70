/*
Package lifelogger is a LINE Messaging API webhook server that appends received
messages to a Google Sheets spreadsheet as a running life log.

Text messages are appended verbatim; image messages are recompressed and uploaded
to Google Drive or Cloud Storage and appended as an embedded =IMAGE(...) formula.
Rows are bucketed into one worksheet per month, with a separator row inserted at
the start of each week.

lifelogger supports the following commands:

  - serve, to run the webhook server
  - check, to verify the configuration, credentials and connectivity
  - simulate-text, to log a synthetic text message without a live webhook
  - simulate-image, to compress, upload and log a local image file
  - version, to display the version
*/
package lifelogger
