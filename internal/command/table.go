package command

// buildRules assembles the pattern table. Order is priority: the first
// matching rule wins and the catch-all stays last. Shell execution is
// listed ahead of application launching so "run command ..." reaches the
// denylist check instead of being treated as an application name.
func (p *Processor) buildRules() []Rule {
	return []Rule{
		// Time and date
		{mustPattern(`what (time|day|date) is it`), p.timeDate},
		{mustPattern(`(current|today's) (time|date)`), p.timeDate},
		{mustPattern(`(tell me|what's) the (time|date)`), p.timeDate},

		// Weather
		{mustPattern(`(what's|what is|how's) the weather( like)?( today| now)?( in (?P<location>.+))?`), p.weather},
		{mustPattern(`(weather|temperature|forecast)( in| for)? (?P<location>.+)`), p.weather},

		// System analysis
		{mustPattern(`(tell me|what's|what is)( about)?( my)? (system|pc|computer)( info| information)?`), p.systemInfo},
		{mustPattern(`(system|pc|computer)( information| info)`), p.systemInfo},
		{mustPattern(`(tell me|what's|what is)( about)?( my)? (cpu|processor)( info| information)?`), p.cpuInfo},
		{mustPattern(`(tell me|what's|what is)( about)?( my)? (memory|ram)( info| information)?`), p.memoryInfo},
		{mustPattern(`(tell me|what's|what is)( about)?( my)? (disk|storage|drive)( info| information)?`), p.diskInfo},
		{mustPattern(`(tell me|what's|what is)( about)?( my)? (network|internet)( info| information)?`), p.networkInfo},
		{mustPattern(`(tell me|what's|what is)( about)?( my)? (graphics|gpu|video card)( info| information)?`), p.graphicsInfo},
		{mustPattern(`(show|list|what) (processes|applications)( are)? running`), p.runningProcesses},
		{mustPattern(`(show|list|what) (applications|programs|software)( are)? installed`), p.installedApplications},
		{mustPattern(`(tell me|what's|what is)( the)? (system|pc|computer) health`), p.systemHealth},
		{mustPattern(`(search|find)( for)?( files)? (?P<pattern>.+?)( in| within)? (?P<path>.+)`), p.searchFiles},
		{mustPattern(`(analyze|examine)( the)? (files|file types)( in| within)? (?P<directory>.+)`), p.analyzeFileTypes},

		// Device monitoring
		{mustPattern(`(tell me|what|which)( about)?( my)? (devices|peripherals)( are connected| do i have)`), p.connectedDevices},
		{mustPattern(`(tell me|what)( about)?( my)? (monitor|display|screen)s?( info| information)?`), p.monitorInfo},
		{mustPattern(`(tell me|what)( about)?( my)? (printer|printing device)s?( info| information)?`), p.printerInfo},
		{mustPattern(`(tell me|what)( about)?( my)? (usb|usb device)s?( info| information)?`), p.usbDevices},
		{mustPattern(`(tell me|what)( about)?( my)? (audio|sound|speaker|microphone)( device)?s?( info| information)?`), p.audioDevices},
		{mustPattern(`(tell me|what)( about)?( my)? (bluetooth|bt)( device)?s?( info| information)?`), p.bluetoothDevices},
		{mustPattern(`(scan|check)( for)? (new|newly connected) devices`), p.scanForNewDevices},

		// Shell commands
		{mustPattern(`execute( the)? command (?P<command>.+)`), p.executeCommand},
		{mustPattern(`run( the)? command (?P<command>.+)`), p.executeCommand},

		// Applications
		{mustPattern(`open (?P<app_name>.+?)(\s+with\s+(?P<args>.+))?$`), p.openApplication},
		{mustPattern(`launch (?P<app_name>.+?)(\s+with\s+(?P<args>.+))?$`), p.openApplication},
		{mustPattern(`start (?P<app_name>.+?)(\s+with\s+(?P<args>.+))?$`), p.openApplication},
		{mustPattern(`run (?P<app_name>.+?)(\s+with\s+(?P<args>.+))?$`), p.openApplication},

		// Directories
		{mustPattern(`create (a )?(?:folder|directory|dir)( called| named)? (?P<dir_path>.+)`), p.createDirectory},
		{mustPattern(`make (a )?(?:folder|directory|dir)( called| named)? (?P<dir_path>.+)`), p.createDirectory},
		{mustPattern(`create (a )?(?:folder|directory|dir)$`), p.createDirectoryPrompt},
		{mustPattern(`make (a )?(?:folder|directory|dir)$`), p.createDirectoryPrompt},
		{mustPattern(`delete (?:the )?(?:folder|directory|dir)( called| named)? (?P<dir_path>.+)`), p.deleteDirectory},
		{mustPattern(`remove (?:the )?(?:folder|directory|dir)( called| named)? (?P<dir_path>.+)`), p.deleteDirectory},
		{mustPattern(`update (?:the )?(?:folder|directory|dir)( called| named)? (?P<dir_path>.+)`), p.renameDirectory},
		{mustPattern(`insert (?:into )?(?:folder|directory|dir)( called| named)? (?P<dir_path>.+)`), p.insertIntoDirectory},

		// Files
		{mustPattern(`create (a )?file( called| named)? (?P<file_path>.+)`), p.createFile},
		{mustPattern(`make (a )?file( called| named)? (?P<file_path>.+)`), p.createFile},
		{mustPattern(`delete( the| my)?( file| directory| folder)? (?P<path>.+)`), p.deleteItem},
		{mustPattern(`remove( the| my)?( file| directory| folder)? (?P<path>.+)`), p.deleteItem},

		// General knowledge
		{mustPattern(`(who|what|when|where|why|how) (is|are|was|were|do|does|did) .+`), p.answerQuestion},
		{mustPattern(`tell me (about|something about) .+`), p.answerQuestion},

		// Shutdown
		{mustPattern(`(exit|quit|shutdown|bye|goodbye)`), p.shutdown},

		// Personality
		{mustPattern(`(who are you|what are you|tell me about yourself)`), p.introduceSelf},
		{mustPattern(`(how are you|how do you feel)`), p.moodResponse},
		{mustPattern(`(thank you|thanks)`), p.youreWelcome},

		// Help
		{mustPattern(`(help|what can you do|commands|list commands)`), p.helpCommand},

		// Security and privacy
		{mustPattern(`(?:enable|turn on) (?P<setting>.+?) (?:data collection|tracking|monitoring)`), p.enablePrivacySetting},
		{mustPattern(`(?:disable|turn off) (?P<setting>.+?) (?:data collection|tracking|monitoring)`), p.disablePrivacySetting},
		{mustPattern(`show (?:my )?privacy settings`), p.showPrivacySettings},
		{mustPattern(`clear (?:all )?(?:my )?data`), p.clearData},
		{mustPattern(`add sensitive directory (?P<directory>.+)`), p.addSensitiveDirectory},
		{mustPattern(`show data access (?:log|history)`), p.showAccessLog},
		{mustPattern(`(?:is my data secure|how secure is my data)`), p.securityStatus},

		// Catch-all, must stay last
		{mustPattern(`.+`), p.defaultResponse},
	}
}
