/*
EEGACQ reads a fixed number of time points from a 16 channel EEG headset over
a serial link and writes the readings, in microvolts, to a csv file which
EEGLAB and BCILAB can import as ASCII.

Each time point is a 56 byte frame:

	+------+-----------+---------------+-----+----------------+
	| 0xAA | 7B meta   | ch0 (3B, BE)  | ... | ch15 (3B, BE)  |
	+------+-----------+---------------+-----+----------------+

Everything received before the first 0xAA is discarded, the rest is cut into
frames and any trailing partial frame is dropped. A lost byte shifts every
following frame, there is no resynchronization yet. Channel codes are
converted to microvolts with:

	uV = (code - 2^23) * 5e6 / 2^24

Command-line Flags:

	-timepoints=30

Number of time points to request. The capture is timepoints*56 bytes, so
garbage preceding the first frame costs one time point.

	-output="data.csv"

File to write the decoded table to. One row per time point, 16 columns, no
header. The file is replaced only once the whole table has been written.

	-port="/dev/tty.sichiray-SPPDev"
	-baud=57600
	-timeout=5s
	-blocksize=840

Serial link parameters. A capture still short of the requested size when the
timeout expires is treated as a failed run.

	-samplefile="/dev/null"

Dumps the raw bytes received to the given file, replay them with -input.

	-input=""

Decodes a raw dump instead of reading the serial port.

	-simulate=false

Decodes randomly generated frames instead of reading the serial port.

	-config=""

Yaml file providing values for any of the above. Keys are the flag names,
serial parameters are nested under "serial":

	timepoints: 120
	output: session1.csv
	serial:
	  port: /dev/ttyUSB0
	  timeout: 10s

	-loglevel="info"
	-logformat="text"

Every flag may also be set with an environment variable named after it, for
example EEGACQ_TIMEPOINTS=60. Command-line flags take precedence over the
environment which takes precedence over the config file.
*/
package main
